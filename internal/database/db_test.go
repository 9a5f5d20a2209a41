package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yasiru/rail-booking/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "rail",
		DBPass: "s3cret",
		DBHost: "db.internal",
		DBPort: "3306",
		DBName: "rail_booking",
	}
	assert.Equal(t,
		"rail:s3cret@tcp(db.internal:3306)/rail_booking?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}

func TestDSN_EmptyPasswordOmitsColon(t *testing.T) {
	cfg := config.Config{
		DBUser: "rail",
		DBHost: "localhost",
		DBPort: "3306",
		DBName: "rail_booking",
	}
	assert.Equal(t,
		"rail@tcp(localhost:3306)/rail_booking?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}
