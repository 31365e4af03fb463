package store

import "gorm.io/gorm"

// Settings holds player options that survive restarts. There is one row.
type Settings struct {
	ID      uint `gorm:"primarykey"`
	InvertY bool `json:"invertY"`
}

// RunResult is one finished play session.
type RunResult struct {
	gorm.Model
	Course          string  `json:"course" gorm:"size:127;index:idx_run_course"`
	Seed            int64   `json:"seed"`
	Outcome         string  `json:"outcome" gorm:"size:16"`
	Rings           int     `json:"rings"`
	Score           int     `json:"score" gorm:"index:idx_run_score"`
	ShotsFired      int     `json:"shotsFired"`
	EnemiesDefeated int     `json:"enemiesDefeated"`
	Elapsed         float64 `json:"elapsed"`
	Distance        float64 `json:"distance"`
	PathLength      float64 `json:"pathLength"`
}

// Models lists every table migrated by Setup.
var Models = []any{
	&Settings{},
	&RunResult{},
}
