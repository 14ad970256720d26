package cache

import "fmt"

func HistoryKey(owner string) string {
	return fmt.Sprintf("prospector:history:%s", owner)
}

func JobStatusKey(jobID string) string {
	return fmt.Sprintf("prospector:job:%s", jobID)
}

func RateLimitKey(session string) string {
	return fmt.Sprintf("ratelimit:%s", session)
}
