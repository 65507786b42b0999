package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"clinicreport/internal/cache"
	"clinicreport/internal/core"
	applog "clinicreport/internal/log"
	"clinicreport/internal/source"
)

const doctorsKey = "doctors"

// DoctorDirectory caches the doctor list. Concurrent misses share a single
// upstream call.
type DoctorDirectory struct {
	lister source.DoctorLister
	cache  cache.Cache[[]core.Doctor]
	group  singleflight.Group
	logger *applog.Logger
}

func NewDoctorDirectory(lister source.DoctorLister, ttl time.Duration, logger *applog.Logger) *DoctorDirectory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DoctorDirectory{
		lister: lister,
		cache:  cache.NewLRUCache[[]core.Doctor](1, ttl),
		logger: logger.WithComponent(applog.ComponentCache),
	}
}

// ListDoctors implements source.DoctorLister.
func (d *DoctorDirectory) ListDoctors(ctx context.Context) ([]core.Doctor, error) {
	if docs, ok := d.cache.Get(doctorsKey); ok {
		return clone(docs), nil
	}

	v, err, shared := d.group.Do(doctorsKey, func() (any, error) {
		docs, err := d.lister.ListDoctors(ctx)
		if err != nil {
			return nil, err
		}
		d.cache.Set(doctorsKey, docs)
		return docs, nil
	})
	if err != nil {
		return nil, err
	}
	d.logger.DebugContext(ctx, "Doctor list loaded", "shared", shared)
	return clone(v.([]core.Doctor)), nil
}

// Invalidate drops the cached list.
func (d *DoctorDirectory) Invalidate() {
	d.cache.Delete(doctorsKey)
}

func clone(docs []core.Doctor) []core.Doctor {
	out := make([]core.Doctor, len(docs))
	copy(out, docs)
	return out
}
