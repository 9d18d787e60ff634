package idutil

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Time returns the moment the snowflake id was generated.
func Time(id int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(id).Time()).UTC()
}
