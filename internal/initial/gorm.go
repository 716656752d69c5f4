package initial

import (
	"fmt"
	"log"
	"os"
	"time"

	"MediLink/internal/config"
	notifEntity "MediLink/internal/modules/notification/domain/entity"
	rxEntity "MediLink/internal/modules/prescription/domain/entity"
	"MediLink/pkg/zlog"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

func init() {
	conf := config.GetConfig()
	user := conf.MysqlConfig.User
	password := conf.MysqlConfig.Password
	host := conf.MysqlConfig.Host
	port := conf.MysqlConfig.Port
	dbName := conf.MysqlConfig.DatabaseName
	if dbName == "" {
		dbName = conf.MainConfig.AppName
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, password, host, port, dbName)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		zlog.Fatal(err.Error())
	}

	// 自动迁移，没有建表时自动创建对应的表
	err = GormDB.AutoMigrate(
		&rxEntity.Prescription{},
		&rxEntity.TransitionLog{},
		&rxEntity.PrescriptionEvent{},

		&notifEntity.Notification{},
		&notifEntity.NotificationPreference{},
	)
	if err != nil {
		zlog.Fatal(err.Error())
	}
}
