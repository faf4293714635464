package main

import (
	"gorm.io/gorm"

	"github.com/hxzhou/filebin/config"
	"github.com/hxzhou/filebin/models"
	"github.com/hxzhou/filebin/routes"
	"github.com/hxzhou/filebin/store"
	"github.com/hxzhou/filebin/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.File{})
	seedDefaultUser(db, cfg)

	tokens := store.NewRedisTokenStore(utils.GetRedis())
	docs := store.NewGormDocumentStore(db)
	blobs, err := store.NewDiskBlobStore(cfg.FolderPath)
	if err != nil {
		utils.Sugar.Fatalf("blob storage init failed: %v", err)
	}

	r := routes.SetupRouter(tokens, docs, blobs)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

// seedDefaultUser creates one account when the users table is empty and seed
// credentials are configured. Accounts are otherwise provisioned out of band.
func seedDefaultUser(db *gorm.DB, cfg config.AppConfig) {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return
	}
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil || n > 0 {
		return
	}
	hash, err := utils.HashPassword(cfg.SeedPassword)
	if err != nil {
		utils.Sugar.Errorf("seed user hash failed: %v", err)
		return
	}
	if err := db.Create(&models.User{Email: cfg.SeedEmail, PasswordHash: hash}).Error; err != nil {
		utils.Sugar.Errorf("seed user create failed: %v", err)
		return
	}
	utils.Sugar.Infof("seeded user %s", cfg.SeedEmail)
}
