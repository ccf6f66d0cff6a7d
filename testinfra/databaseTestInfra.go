package testinfra

import (
	"context"
	"os"
	"planboard/persistence"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager
}

// StartMysqlTestDatabase TEST_MYSQL_SERVICE=root:root@(127.0.0.1:3306)
// The calling test is skipped when TEST_MYSQL_SERVICE is not set.
func StartMysqlTestDatabase(t *testing.T, baseName string) *TestDatabase {
	mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE")
	if mysqlSvc == "" {
		t.Skip("TEST_MYSQL_SERVICE is not set")
	}
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	dbConfig := &persistence.DatabaseConfig{
		DriverType: "mysql", DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
	}
	if _, err := mysql.ParseDSN(dbConfig.DriverArgs); err != nil {
		t.Fatalf("invalid TEST_MYSQL_SERVICE %v", err)
	}

	// create database (no conflict)
	if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
		t.Fatalf("failed to prepare database %v", err)
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		t.Fatalf("database connection failed %v", err)
	}
	if err := persistence.AutoMigrate(ds.GormDB(context.Background())); err != nil {
		t.Fatalf("database migration failed %v", err)
	}

	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

func StopMysqlTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if db := testDatabase.DS.GormDB(context.Background()); db != nil {
		if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
			logrus.Warnln("failed to drop test database: " + testDatabase.TestDatabaseName)
		} else {
			logrus.Infoln("test database " + testDatabase.TestDatabaseName + " dropped")
		}
	}
	testDatabase.DS.Stop()
}
