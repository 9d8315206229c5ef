package configs

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func dialector(env ENV) (gorm.Dialector, error) {
	switch env.DBDriver {
	case "mysql", "":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			env.DBUser,
			env.DBPassword,
			env.DBHost,
			env.DBPort,
			env.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Kolkata",
			env.DBHost,
			env.DBPort,
			env.DBUser,
			env.DBPassword,
			env.DBName,
			env.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
}

// OpenConnection opens the database and pings it, retrying while the server
// comes up.
func OpenConnection(env ENV, log *logrus.Entry) (*gorm.DB, error) {
	dial, err := dialector(env)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	maxRetries := 10
	retryDelay := 5 * time.Second

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		log.Infof("connecting to %s database %s@%s:%s (attempt %d/%d)", env.DBDriver, env.DBName, env.DBHost, env.DBPort, i+1, maxRetries)
		db, err := gorm.Open(dial, gormCfg)
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					sqlDB.SetMaxOpenConns(25)
					sqlDB.SetMaxIdleConns(10)
					sqlDB.SetConnMaxLifetime(30 * time.Minute)
					log.Info("database connection established")
					return db, nil
				}
			}
			lastErr = pingErr
			log.Warnf("failed to ping database: %v, retrying in %v", pingErr, retryDelay)
		} else {
			lastErr = err
			log.Warnf("failed to open gorm connection: %v, retrying in %v", err, retryDelay)
		}

		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect to the database after %d retries: %w", maxRetries, lastErr)
}
