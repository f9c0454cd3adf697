package health

import (
	"context"
	"errors"
	"testing"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestDatabaseChecker(t *testing.T) {
	c := Database(fakePinger{})
	if c.Name != "database" {
		t.Errorf("name = %q, want database", c.Name)
	}
	if err := c.Check(context.Background()); err != nil {
		t.Errorf("healthy pinger: %v", err)
	}

	broken := Database(fakePinger{err: errors.New("connection refused")})
	if err := broken.Check(context.Background()); err == nil {
		t.Error("broken pinger should fail the check")
	}
}

func TestAlwaysChecker(t *testing.T) {
	ok := Always("cache", nil)
	if err := ok.Check(context.Background()); err != nil {
		t.Errorf("Always(nil): %v", err)
	}
	bad := Always("cache", errors.New("down"))
	if err := bad.Check(context.Background()); err == nil {
		t.Error("Always(err) should fail")
	}
}
