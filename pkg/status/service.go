package status

import (
	"context"

	"yunion.io/x/log"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/store"
)

const (
	DefaultTableName = "garage_status"
	DefaultGarage    = "main_garage"
	PartitionKey     = "garage_name"
	StatusKey        = "status"
)

// Publisher is told about every status that was written successfully.
type Publisher interface {
	Publish(ctx context.Context, s GarageDoorStatus) error
}

// Service reads and writes the single garage door row. It holds no state of
// its own; the record store is the only persistence point.
type Service struct {
	store     store.RecordStore
	table     string
	publisher Publisher
}

type Option func(*Service)

func WithTable(table string) Option {
	return func(s *Service) {
		if table != "" {
			s.table = table
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(st store.RecordStore, opts ...Option) *Service {
	s := &Service{store: st, table: DefaultTableName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func rowKey() store.Key {
	return store.Key{Name: PartitionKey, Value: DefaultGarage}
}

// GetStatus returns the last recorded status, or nil when there is no row,
// no status attribute, or an attribute that does not decode. Only a failing
// store call is reported as an error.
func (s *Service) GetStatus(ctx context.Context) (*GarageDoorStatus, error) {
	item, err := s.store.GetItem(ctx, s.table, rowKey())
	if err != nil {
		log.Errorf("get garage door status: %v", err)
		return nil, errors.Wrap(err, "get garage door status")
	}
	raw, ok := item[StatusKey]
	if !ok {
		log.Infof("No garage door status recorded")
		return nil, nil
	}
	st, ok := Decode(raw)
	if !ok {
		log.Warningf("Ignoring stored garage door status %q", raw)
		return nil, nil
	}
	log.Infof("Retrieved garage door status %s", Encode(st))
	return &GarageDoorStatus{Status: st}, nil
}

// SetStatus overwrites the row with gs. The write is unconditional, so the
// last writer wins.
func (s *Service) SetStatus(ctx context.Context, gs GarageDoorStatus) error {
	if !gs.Status.IsValid() {
		return errors.Wrapf(ErrInvalidStatus, "%q", string(gs.Status))
	}
	encoded := Encode(gs.Status)
	if err := s.store.PutItem(ctx, s.table, rowKey(), store.Item{StatusKey: encoded}); err != nil {
		log.Errorf("set garage door status %s: %v", encoded, err)
		return errors.Wrap(err, "set garage door status")
	}
	log.Infof("Garage door status %s saved", encoded)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, gs); err != nil {
			log.Warningf("publish garage door status %s: %v", encoded, err)
		}
	}
	return nil
}
