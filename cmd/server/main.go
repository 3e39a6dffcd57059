// @title           Sales Order API
// @version         1.0.0
// @description     CRUD API for sales orders, their windows and the sub elements of each window, with paginated, filtered and sorted listings.

// @contact.name   API Support

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
