package model

import "time"

type Like struct {
	LikerID   int64
	LikeeID   int64
	CreatedAt time.Time
}
