package persistence

import (
	"database/sql"
	"errors"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_URL example:
// root:root@(127.0.0.1:3306)/approvalflow?charset=utf8mb4&parseTime=True&loc=Local
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driverArgs := os.Getenv("DATABASE_URL")
	if driverArgs == "" {
		return nil, errors.New("environment variable DATABASE_URL is not set")
	}
	driverType := os.Getenv("DATABASE_DRIVER")
	if driverType == "" {
		driverType = "mysql"
	}
	return &DatabaseConfig{DriverType: driverType, DriverArgs: driverArgs}, nil
}

// PrepareMysqlDatabase creates the database named in driverArgs when absent.
func PrepareMysqlDatabase(driverArgs string) error {
	databaseName, err := extractDatabaseName(driverArgs)
	if err != nil {
		return err
	}

	serverArgs := strings.Replace(driverArgs, "/"+databaseName, "/", 1)
	conn, err := sql.Open("mysql", serverArgs)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Exec("CREATE DATABASE IF NOT EXISTS `" + databaseName + "` CHARACTER SET utf8mb4")
	return err
}

func extractDatabaseName(driverArgs string) (string, error) {
	idx := strings.LastIndex(driverArgs, "/")
	if idx < 0 {
		return "", errors.New("database name not found in driver args")
	}
	name := driverArgs[idx+1:]
	if qIdx := strings.Index(name, "?"); qIdx >= 0 {
		name = name[0:qIdx]
	}
	if name == "" {
		return "", errors.New("database name not found in driver args")
	}
	return name, nil
}
