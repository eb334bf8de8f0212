package dbmanager_test

import (
	"context"
	"fmt"
	"log"

	"github.com/sagarc03/dbmanager"
)

func ExampleManager() {
	store := dbmanager.NewSettings(map[string]string{
		"database.driver.sqlite": "sqlite",
	})

	registry := dbmanager.NewMemoryRegistry()
	manager, err := dbmanager.New(registry, store)
	if err != nil {
		log.Fatal(err)
	}

	if err := manager.RegisterConnection("cache", dbmanager.MustParseDSN("sqlite:///:memory:")); err != nil {
		log.Fatal(err)
	}

	fmt.Println(store.Get("database.connection.default"))

	db, err := registry.Open(context.Background(), "")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
		log.Fatal(err)
	}
	fmt.Println(one)
	// Output:
	// cache
	// 1
}

func ExampleDSN_Redacted() {
	dsn := dbmanager.MustParseDSN("postgres://app:secret@db:5432/shop?sslmode=disable")

	fmt.Println(dsn.Redacted())
	// Output: postgres://app:xxxxx@db:5432/shop?sslmode=disable
}
