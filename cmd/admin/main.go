// Command admin manages postline accounts from the command line.
package main

import (
	"fmt"
	"os"

	"postline/internal/config"
	"postline/internal/database"
	"postline/internal/middleware"

	"gorm.io/gorm"
)

func main() {
	a := &adminApp{connect: func() (*gorm.DB, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		middleware.ConfigureLogger(cfg.Env)
		return database.Connect(cfg)
	}}

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
