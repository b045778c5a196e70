package cache

import (
	"fmt"
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/ipvet/ipvet/config"
	"github.com/ipvet/ipvet/database"
	"github.com/ipvet/ipvet/pkg/data"
	log "github.com/sirupsen/logrus"
)

type repo struct {
	db   *database.DB
	conf *config.Config
	log  *log.Logger
}

//pruneMeta records the last time expired rows were purged so that pruning
//runs at most once per pruneInterval
type pruneMeta struct {
	ID      string    `bson:"_id"`
	LastRun time.Time `bson:"last_run"`
}

//NewMongoRepository creates a new MongoDB backed result cache and runs an
//on-open pruning pass
func NewMongoRepository(db *database.DB, conf *config.Config, logger *log.Logger) (Repository, error) {
	r := &repo{
		db:   db,
		conf: conf,
		log:  logger,
	}
	if err := r.createIndexes(); err != nil {
		return nil, err
	}

	// Pruning is an optimization, not a correctness requirement
	removed, err := r.Prune(false)
	if err != nil {
		logger.WithFields(log.Fields{
			"error": err.Error(),
		}).Warn("Failed to prune expired cache entries")
	} else if removed > 0 {
		logger.WithFields(log.Fields{
			"removed": removed,
		}).Debug("Pruned expired cache entries")
	}
	return r, nil
}

//createIndexes sets up the compound unique index which keys the cache
func (r *repo) createIndexes() error {
	session := r.db.Session.Copy()
	defer session.Close()

	coll := session.DB(r.db.GetSelectedDB()).C(r.conf.T.Cache.CacheTable)

	indexes := []mgo.Index{
		{Key: []string{"ip", "provider"}, Unique: true},
		{Key: []string{"cached_at"}},
	}

	for _, index := range indexes {
		err := coll.EnsureIndex(index)
		if err != nil {
			return err
		}
	}
	return nil
}

//Get returns the cached result for (ip, provider). A row which exists but
//has expired is treated identically to a row which is absent.
func (r *repo) Get(ip string, provider string) (*data.ProviderResult, bool, error) {
	if err := validateKey(ip, provider); err != nil {
		return nil, false, err
	}

	session := r.db.Session.Copy()
	defer session.Close()

	var entry Entry
	err := session.DB(r.db.GetSelectedDB()).C(r.conf.T.Cache.CacheTable).
		Find(bson.M{"ip": ip, "provider": provider}).One(&entry)
	if err == mgo.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if entry.Expired(time.Now()) {
		return nil, false, nil
	}

	result := entry.Result
	result.Cached = true
	return &result, true, nil
}

//Put stores a successful result, overwriting any previous entry for the
//same (ip, provider) pair
func (r *repo) Put(ip string, provider string, result *data.ProviderResult, ttl time.Duration) error {
	if err := validateKey(ip, provider); err != nil {
		return err
	}
	if result.Errored() {
		// caching a transient failure would make it sticky for the TTL window
		return fmt.Errorf("refusing to cache errored result for %s/%s", provider, ip)
	}

	session := r.db.Session.Copy()
	defer session.Close()

	entry := Entry{
		IP:       ip,
		Provider: provider,
		Result:   *result,
		CachedAt: time.Now(),
		TTL:      int64(ttl / time.Second),
	}
	entry.Result.Cached = false

	_, err := session.DB(r.db.GetSelectedDB()).C(r.conf.T.Cache.CacheTable).
		Upsert(bson.M{"ip": ip, "provider": provider}, entry)
	return err
}

//Entries returns every cache row for inspection
func (r *repo) Entries() ([]Entry, error) {
	session := r.db.Session.Copy()
	defer session.Close()

	var entries []Entry
	err := session.DB(r.db.GetSelectedDB()).C(r.conf.T.Cache.CacheTable).
		Find(nil).Sort("provider", "ip").All(&entries)
	return entries, err
}

//Prune removes rows past expiry. The pass itself is rate limited via a
//marker document so repeated automatic invocations are cheap no-ops;
//force bypasses the marker for explicit user requests.
func (r *repo) Prune(force bool) (int, error) {
	session := r.db.Session.Copy()
	defer session.Close()

	metaColl := session.DB(r.db.GetSelectedDB()).C(r.conf.T.Cache.PruneMetaTable)

	if !force {
		var meta pruneMeta
		err := metaColl.FindId("prune").One(&meta)
		if err != nil && err != mgo.ErrNotFound {
			return 0, err
		}
		if err == nil && time.Since(meta.LastRun) < pruneInterval {
			return 0, nil
		}
	}

	_, err := metaColl.UpsertId("prune", pruneMeta{ID: "prune", LastRun: time.Now()})
	if err != nil {
		return 0, err
	}

	// a row is expired once cached_at + ttl <= now; ttl varies per row so
	// the comparison runs server side against the stored fields
	now := time.Now()
	info, err := session.DB(r.db.GetSelectedDB()).C(r.conf.T.Cache.CacheTable).
		RemoveAll(bson.M{"$expr": bson.M{"$lte": []interface{}{
			bson.M{"$add": []interface{}{"$cached_at", bson.M{"$multiply": []interface{}{"$ttl", 1000}}}},
			now,
		}}})
	if err != nil {
		return 0, err
	}
	return info.Removed, nil
}

//Clear drops every cache row
func (r *repo) Clear() (int, error) {
	session := r.db.Session.Copy()
	defer session.Close()

	info, err := session.DB(r.db.GetSelectedDB()).C(r.conf.T.Cache.CacheTable).
		RemoveAll(nil)
	if err != nil {
		return 0, err
	}
	return info.Removed, nil
}
