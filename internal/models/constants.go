package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Transitions is the closed booking status graph: pending may be confirmed
// or cancelled, confirmed may be completed, terminal states go nowhere.
var Transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether target is reachable from current in one step.
func CanTransition(current, target string) bool {
	for _, next := range Transitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the four booking statuses.
func ValidStatus(s string) bool {
	_, ok := Transitions[s]
	return ok
}

const (
	// DefaultRedisTTL время жизни черновика заявки в Redis
	DefaultRedisTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultPageSize размер страницы каталога по умолчанию
	DefaultPageSize = 12

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 20

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах

	// DateLayout формат календарных дат в документах бронирования
	DateLayout = "2006-01-02"
)
