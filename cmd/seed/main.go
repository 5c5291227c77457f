package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/gymbro/gymbro-api/config"
	"github.com/gymbro/gymbro-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@gymbro.shop"
	password := "password123"
	name := "demoUser"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password, name, confirmed)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	products := []struct {
		title, description, category, gender string
		price                                float64
	}{
		{"Training Tee", "Breathable cotton training t-shirt", "shirts", "men", 19.99},
		{"Flex Leggings", "High-waist stretch leggings", "pants", "women", 34.99},
		{"Lift Runner", "Flat-sole lifting shoe", "shoes", "unisex", 79.99},
		{"Lifting Straps", "Cotton wrist straps for heavy pulls", "accessories", "unisex", 12.50},
	}
	for _, p := range products {
		var pid string
		err := db.QueryRow(`
			INSERT INTO products (title, description, category, gender, price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, p.title, p.description, p.category, p.gender, p.price).Scan(&pid)
		if err != nil {
			log.Fatalf("failed to seed product %q: %v", p.title, err)
		}
		fmt.Printf("seeded product: id=%s title=%s\n", pid, p.title)
	}
}
