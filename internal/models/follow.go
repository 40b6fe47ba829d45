package models

import "gorm.io/gorm"

// Follow represents a follower relationship (PostgreSQL)
type Follow struct {
	gorm.Model
	FollowerID  uint `json:"follower_id" gorm:"index:idx_follow_pair,unique"`
	FollowingID uint `json:"following_id" gorm:"index:idx_follow_pair,unique"`
}
