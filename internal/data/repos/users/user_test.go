package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mand0ng/fitness-app-backend/internal/data/repos/testutil"
	"github.com/mand0ng/fitness-app-backend/internal/domain/user"
	"github.com/mand0ng/fitness-app-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewUserRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, &user.User{Email: " Ana@Example.com ", Password: "pw", Name: "Ana"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("Create: id not assigned")
	}

	got, err := repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != "ana@example.com" {
		t.Fatalf("GetByID: email %q", got.Email)
	}
	if got.OnboardingComplete() {
		t.Fatalf("fresh user should not be onboarded")
	}

	got, err = repo.GetByEmail(dbc, "ANA@example.com")
	if err != nil || got.ID != created.ID {
		t.Fatalf("GetByEmail: got %+v err=%v", got, err)
	}

	if _, err := repo.GetByID(dbc, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID unknown: want ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByEmail(dbc, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByEmail unknown: want ErrNotFound, got %v", err)
	}
}

func TestUserRepoRoundTripsOnboarding(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	seeded := testutil.SeedUser(t, ctx, db, "onboarded-"+uuid.NewString()+"@example.com", true)

	repo := NewUserRepo(db, testutil.Logger(t))
	got, err := repo.GetByID(dbctx.Background(ctx), seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.OnboardingComplete() {
		t.Fatalf("seeded user should be onboarded: %+v", got)
	}
	if len(got.DaysAvailable) != 3 || got.DaysAvailable[2] != "friday" {
		t.Fatalf("days did not round trip: %#v", got.DaysAvailable)
	}
}
