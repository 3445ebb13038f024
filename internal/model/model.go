package model

import (
	"github.com/opencatalog/repo-scanner/cfg"
	"github.com/opencatalog/repo-scanner/pkg/db"
	"github.com/opencatalog/repo-scanner/pkg/log"
)

type Model struct {
	Config *cfg.Config `gorm:"-"`
	Logger log.Logger  `gorm:"-"`
	Mysql  *db.Mysql   `gorm:"-"`
}
