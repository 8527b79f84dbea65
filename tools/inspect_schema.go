// Command inspect_schema prints the sqlite DDL that AutoMigrate derives from the models,
// for comparison against the hand-written scripts under data/initdb.
package main

import (
	"fmt"
	"log"

	"github.com/localnerve/sharmers-menus/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var objects []struct {
		Type string
		Name string
		SQL  *string `gorm:"column:sql"`
	}
	err = db.Raw("SELECT type, name, sql FROM sqlite_master WHERE name NOT LIKE 'sqlite_%' ORDER BY tbl_name, type DESC, name").
		Scan(&objects).Error
	if err != nil {
		log.Fatal(err)
	}

	for _, o := range objects {
		if o.SQL == nil {
			continue
		}
		fmt.Printf("\n=== %s: %s ===\n%s\n", o.Type, o.Name, *o.SQL)
	}
}
