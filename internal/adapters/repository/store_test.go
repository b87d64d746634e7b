package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/okian/admitcalc/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

// exercise runs the shared contract against any Store.
func exercise(store repository.Store) {
	ctx := context.Background()

	Convey("When reading a missing key", func() {
		_, err := store.Get(ctx, "missing")

		Convey("Then ErrNotFound is returned", func() {
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When writing and overwriting a key", func() {
		So(store.Put(ctx, "kkc_score_sets_v2", []byte(`[1]`)), ShouldBeNil)
		So(store.Put(ctx, "kkc_score_sets_v2", []byte(`[2]`)), ShouldBeNil)

		Convey("Then the last value wins", func() {
			got, err := store.Get(ctx, "kkc_score_sets_v2")
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, `[2]`)
		})

		Convey("And deleting it makes it missing again", func() {
			So(store.Delete(ctx, "kkc_score_sets_v2"), ShouldBeNil)
			_, err := store.Get(ctx, "kkc_score_sets_v2")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(store.Delete(ctx, "kkc_score_sets_v2"), ShouldBeNil)
		})
	})

	Convey("When writing an empty key", func() {
		So(errors.Is(store.Put(ctx, "", []byte("x")), repository.ErrEmptyKey), ShouldBeTrue)
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		store := repository.NewMemoryStore()
		exercise(store)

		Convey("When the caller mutates a returned value", func() {
			ctx := context.Background()
			So(store.Put(ctx, "k", []byte("abc")), ShouldBeNil)
			got, _ := store.Get(ctx, "k")
			got[0] = 'z'

			Convey("Then the stored value is unchanged", func() {
				again, _ := store.Get(ctx, "k")
				So(string(again), ShouldEqual, "abc")
				So(store.Keys(), ShouldResemble, []string{"k"})
			})
		})

		Convey("When closed", func() {
			So(store.Close(), ShouldBeNil)
			_, err := store.Get(context.Background(), "k")
			So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
		})
	})
}

func TestFileStore(t *testing.T) {
	Convey("Given a file store in a temp dir", t, func() {
		dir := t.TempDir()
		store, err := repository.NewFileStore(dir)
		So(err, ShouldBeNil)
		exercise(store)

		Convey("When a key contains path separators", func() {
			So(store.Put(context.Background(), "../escape/me", []byte("v")), ShouldBeNil)

			Convey("Then the file stays inside the base directory", func() {
				_, err := os.Stat(filepath.Join(dir, "..", "escape"))
				So(os.IsNotExist(err), ShouldBeTrue)
				got, err := store.Get(context.Background(), "../escape/me")
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, "v")
			})
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given an in-memory sqlite store", t, func() {
		store, err := repository.OpenSQL(context.Background(), repository.DriverSQLite, "file::memory:")
		So(err, ShouldBeNil)
		Reset(func() { store.Close() })
		exercise(store)
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("ADMITCALC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ADMITCALC_TEST_POSTGRES_DSN not set")
	}
	Convey("Given a postgres store", t, func() {
		store, err := repository.OpenSQL(context.Background(), repository.DriverPostgres, dsn)
		So(err, ShouldBeNil)
		Reset(func() { store.Close() })
		exercise(store)
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ADMITCALC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ADMITCALC_TEST_REDIS_ADDR not set")
	}
	Convey("Given a redis store", t, func() {
		store, err := repository.OpenRedis(context.Background(), addr, 0)
		So(err, ShouldBeNil)
		Reset(func() { store.Close() })
		exercise(store)
	})
}

func TestOpen(t *testing.T) {
	Convey("Given the store factory", t, func() {
		ctx := context.Background()

		Convey("When opening an unknown driver", func() {
			_, err := repository.Open(ctx, "etcd")
			So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
		})

		Convey("When opening the default driver with a key prefix", func() {
			store, err := repository.Open(ctx, "", repository.WithKeyPrefix("alice:"))
			So(err, ShouldBeNil)
			exercise(store)
		})

		Convey("When two prefixed stores share a directory", func() {
			dir := t.TempDir()
			a, err := repository.Open(ctx, repository.DriverFile, repository.WithPath(dir), repository.WithKeyPrefix("a:"))
			So(err, ShouldBeNil)
			b, err := repository.Open(ctx, repository.DriverFile, repository.WithPath(dir), repository.WithKeyPrefix("b:"))
			So(err, ShouldBeNil)

			for i := 0; i < 3; i++ {
				So(a.Put(ctx, "k", []byte(strconv.Itoa(i))), ShouldBeNil)
			}

			Convey("Then their keys do not collide", func() {
				_, err := b.Get(ctx, "k")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				got, err := a.Get(ctx, "k")
				So(err, ShouldBeNil)
				So(string(got), ShouldEqual, "2")
			})
		})
	})
}
