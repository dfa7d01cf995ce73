package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/talentmatch/internal/adapters/repository"
)

func TestOpen(t *testing.T) {
	Convey("Given a repository source", t, func() {
		ctx := context.Background()

		Convey("When nothing is configured", func() {
			_, _, err := repository.Open(ctx, repository.Source{}, nil)

			Convey("Then it reports a missing source", func() {
				So(errors.Is(err, repository.ErrNoSource), ShouldBeTrue)
			})
		})

		Convey("When a fixture path is given", func() {
			repo, closeFn, err := repository.Open(ctx, repository.Source{FixturePath: "testdata/campaign.yaml"}, nil)

			Convey("Then the in-memory store is returned", func() {
				So(err, ShouldBeNil)
				_, ok := repo.(*repository.MemoryStore)
				So(ok, ShouldBeTrue)
				So(closeFn(), ShouldBeNil)
			})
		})

		Convey("When the fixture is missing", func() {
			_, _, err := repository.Open(ctx, repository.Source{FixturePath: "testdata/nope.yaml"}, nil)

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a Redis address is added", func() {
			repo, closeFn, err := repository.Open(ctx, repository.Source{
				FixturePath: "testdata/campaign.yaml",
				RedisAddr:   "127.0.0.1:1",
				CacheTTL:    time.Minute,
			}, nil)

			Convey("Then the store is wrapped by the cache", func() {
				So(err, ShouldBeNil)
				cached, ok := repo.(*repository.CachedRepository)
				So(ok, ShouldBeTrue)
				stats := cached.Stats()
				So(stats["cache"], ShouldEqual, "redis")
				So(stats["cacheTTLSeconds"], ShouldEqual, 60)
				So(stats["talents"], ShouldEqual, 5)
				So(closeFn(), ShouldBeNil)
			})
		})
	})
}
