package persistence

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv reads DB_DRIVER_TYPE and DB_DRIVER_ARGS, falling back to
// a MySQL DSN assembled from MYSQL_USERNAME, MYSQL_PASSWORD, MYSQL_ADDRESS and MYSQL_DATABASE.
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driverType := os.Getenv("DB_DRIVER_TYPE")
	if driverType == "" {
		driverType = "mysql"
	}
	if driverType != "mysql" {
		return nil, errors.New("unsupported database driver " + driverType)
	}

	driverArgs := os.Getenv("DB_DRIVER_ARGS")
	if driverArgs == "" {
		cfg := mysql.NewConfig()
		cfg.User = envOrDefault("MYSQL_USERNAME", "root")
		cfg.Passwd = envOrDefault("MYSQL_PASSWORD", "root")
		cfg.Net = "tcp"
		cfg.Addr = envOrDefault("MYSQL_ADDRESS", "127.0.0.1:3306")
		cfg.DBName = envOrDefault("MYSQL_DATABASE", "planboard")
		cfg.ParseTime = true
		cfg.Params = map[string]string{"charset": "utf8mb4", "loc": "Local"}
		driverArgs = cfg.FormatDSN()
	}
	if _, err := mysql.ParseDSN(driverArgs); err != nil {
		return nil, fmt.Errorf("invalid database args: %w", err)
	}
	return &DatabaseConfig{DriverType: driverType, DriverArgs: driverArgs}, nil
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// PrepareMysqlDatabase creates the database named in the DSN when it does not exist.
func PrepareMysqlDatabase(driverArgs string) error {
	cfg, err := mysql.ParseDSN(driverArgs)
	if err != nil {
		return err
	}
	databaseName := cfg.DBName
	if databaseName == "" {
		return errors.New("database name is missing in driver args")
	}
	cfg.DBName = ""

	db, err := gorm.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.Warnf("failed to close DB: %v", err)
		}
	}()

	return db.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` DEFAULT CHARACTER SET utf8mb4").Error
}
