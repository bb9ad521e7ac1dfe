package dto

import "errors"

var ErrEndBeforeStart = errors.New("end_time must be after start_time")
