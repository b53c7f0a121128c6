package logger

import (
	"time"

	"go.uber.org/zap"
)

func String(key, val string) Field                 { return zap.String(key, val) }
func Strings(key string, val []string) Field       { return zap.Strings(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Any(key string, val any) Field                { return zap.Any(key, val) }

// Error attaches err under the "error" key.
func Error(err error) Field { return zap.Error(err) }

// Domain fields. Using these keeps key names consistent across components so
// a single work run can be followed through the logs.

// WorkID tags an entry with the work session it belongs to.
func WorkID(id string) Field { return zap.String("work_id", id) }

// TagKey tags an entry with an extracted element key such as "input_3".
func TagKey(key string) Field { return zap.String("tag_key", key) }

// Pass tags an entry with a classification pass name.
func Pass(name string) Field { return zap.String("pass", name) }
