package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// NotificationStatus tracks an invoice email through the outbox
type NotificationStatus int

const (
	NotificationStatusPending NotificationStatus = 0
	NotificationStatusSent    NotificationStatus = 1
	NotificationStatusFailed  NotificationStatus = 2
)

func (s NotificationStatus) String() string {
	switch s {
	case NotificationStatusSent:
		return "Sent"
	case NotificationStatusFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

func (s NotificationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *NotificationStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = NotificationStatus(i)
		return nil
	}
	switch str {
	case "Sent":
		*s = NotificationStatusSent
	case "Failed":
		*s = NotificationStatusFailed
	default:
		*s = NotificationStatusPending
	}
	return nil
}

func (s NotificationStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *NotificationStatus) Scan(value interface{}) error {
	if value == nil {
		*s = NotificationStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = NotificationStatus(v)
	case int:
		*s = NotificationStatus(v)
	}
	return nil
}
