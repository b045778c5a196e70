package ratelimit

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/ipvet/ipvet/config"
	"github.com/ipvet/ipvet/database"
	log "github.com/sirupsen/logrus"
)

type tracker struct {
	db   *database.DB
	conf *config.Config
	log  *log.Logger
}

//NewMongoTracker creates a MongoDB backed rate limit tracker
func NewMongoTracker(db *database.DB, conf *config.Config, logger *log.Logger) (Tracker, error) {
	t := &tracker{
		db:   db,
		conf: conf,
		log:  logger,
	}

	session := db.Session.Copy()
	defer session.Close()

	err := session.DB(db.GetSelectedDB()).C(conf.T.RateLimit.RateLimitTable).
		EnsureIndex(mgo.Index{Key: []string{"provider"}, Unique: true})
	if err != nil {
		return nil, err
	}
	return t, nil
}

//Check reports how long the provider remains blocked. Zero means the
//provider is available. Check never mutates state.
func (t *tracker) Check(provider string) (time.Duration, error) {
	session := t.db.Session.Copy()
	defer session.Close()

	var state State
	err := session.DB(t.db.GetSelectedDB()).C(t.conf.T.RateLimit.RateLimitTable).
		Find(bson.M{"provider": provider}).One(&state)
	if err == mgo.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return state.Remaining(time.Now()), nil
}

//Record notes a throttle signal from the provider, overwriting the prior
//cooldown and incrementing the hit counter
func (t *tracker) Record(provider string, retryAfter time.Duration) error {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}

	session := t.db.Session.Copy()
	defer session.Close()

	_, err := session.DB(t.db.GetSelectedDB()).C(t.conf.T.RateLimit.RateLimitTable).
		Upsert(
			bson.M{"provider": provider},
			bson.M{
				"$set": bson.M{
					"provider":    provider,
					"hit_at":      time.Now(),
					"retry_after": int64(retryAfter / time.Second),
				},
				"$inc": bson.M{"hit_count": 1},
			},
		)
	if err != nil {
		t.log.WithFields(log.Fields{
			"provider": provider,
			"error":    err.Error(),
		}).Error("Failed to record rate limit state")
	}
	return err
}

//States returns the cooldown state for every provider which has been
//throttled
func (t *tracker) States() ([]State, error) {
	session := t.db.Session.Copy()
	defer session.Close()

	var states []State
	err := session.DB(t.db.GetSelectedDB()).C(t.conf.T.RateLimit.RateLimitTable).
		Find(nil).Sort("provider").All(&states)
	return states, err
}
