package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"workmarket/domain"
	"workmarket/infrastructure"
)

// OfferEventPublisher is the queue-facing side of the lifecycle
// services. Satisfied by infrastructure.RabbitMQ; tests pass a fake.
type OfferEventPublisher interface {
	PublishOfferEvent(ev infrastructure.OfferEvent) error
}

const (
	acceptRetries = 3
	retryBackoff  = 50 * time.Millisecond
)

// storeErr tags an unexpected database error so callers can tell it
// apart from precondition failures. The cause stays in the chain so
// errors.As can still classify driver errors. Never wraps domain errors.
func storeErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// isRetryable reports whether a transaction failed on a transient
// conflict (InnoDB deadlock or lock wait timeout).
func isRetryable(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
