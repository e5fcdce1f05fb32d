package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Local copy of the users schema so the script stays standalone.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:'staff'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// Creates a development staff account for local testing of the portal.
//
// Usage:
//
//	go run scripts/create_dev_user.go -email dev@example.com -password secret123
func main() {
	dbPath := flag.String("db", "credentialing_helpdesk.db", "path to the SQLite database")
	username := flag.String("username", "DevStaff", "username for the account")
	email := flag.String("email", "staff@example.com", "email for the account")
	password := flag.String("password", "Staff@123", "password for the account")
	role := flag.String("role", "staff", "role: staff or admin")
	flag.Parse()

	db, err := gorm.Open(sqlite.Open(*dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}

	if err := db.AutoMigrate(&User{}); err != nil {
		log.Fatalf("migrating users table: %v", err)
	}

	var existing User
	if err := db.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Fatalf("user %s already exists (id %d)", *email, existing.ID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	user := User{
		Username:     *username,
		Email:        *email,
		PasswordHash: string(hash),
		Role:         *role,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("creating user: %v", err)
	}

	fmt.Printf("Created %s user %s (id %d)\n", user.Role, user.Email, user.ID)
}
