package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/netdash/netdash/pkg/network/openvpn"
)

const (
	sessionBucket = "openvpn_session"
)

type sessionRepository struct {
	db *bbolt.DB
}

func NewSessionRepository(db *bbolt.DB) openvpn.SessionRepository {
	return &sessionRepository{
		db: db,
	}
}

func (r *sessionRepository) FindOne(ctx context.Context, name string) (*openvpn.Session, error) {
	return dbTx(ctx, r.db, sessionBucket, false, func(tx *bbolt.Tx, bucket *bbolt.Bucket) (*openvpn.Session, error) {
		jsonState := bucket.Get([]byte(name))
		if jsonState == nil {
			return nil, nil
		}

		var session *openvpn.Session
		if err := json.Unmarshal(jsonState, &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		return session, nil
	})
}

func (r *sessionRepository) FindAll(ctx context.Context) ([]*openvpn.Session, error) {
	return dbTx(ctx, r.db, sessionBucket, false, func(tx *bbolt.Tx, bucket *bbolt.Bucket) ([]*openvpn.Session, error) {
		var sessions []*openvpn.Session
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var session *openvpn.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return nil, fmt.Errorf("failed to unmarshal session %s: %w", k, err)
			}
			sessions = append(sessions, session)
		}
		return sessions, nil
	})
}

func (r *sessionRepository) Save(ctx context.Context, session *openvpn.Session) error {
	if session == nil || session.Name == "" {
		return errors.New("session name is required")
	}

	_, err := dbTx(ctx, r.db, sessionBucket, true, func(tx *bbolt.Tx, bucket *bbolt.Bucket) (struct{}, error) {
		jsonState, err := json.Marshal(session)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to marshal session: %w", err)
		}

		if err := bucket.Put([]byte(session.Name), jsonState); err != nil {
			return struct{}{}, fmt.Errorf("failed to save session: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, name string) error {
	_, err := dbTx(ctx, r.db, sessionBucket, true, func(tx *bbolt.Tx, bucket *bbolt.Bucket) (struct{}, error) {
		if err := bucket.Delete([]byte(name)); err != nil {
			return struct{}{}, fmt.Errorf("failed to delete session: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}
