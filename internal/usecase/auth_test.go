package usecase_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/domain"
	"taskboard/internal/usecase"
)

// ---- fakes ----

type fakeUserRepo struct {
	create      func(ctx context.Context, user *domain.User) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.create(ctx, user)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

func newAuth(repo *fakeUserRepo) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(repo, []byte(testJWTKey))
}

// echoCreate assigns an ID and returns the stored user unchanged.
func echoCreate(id string) func(ctx context.Context, user *domain.User) (*domain.User, error) {
	return func(_ context.Context, user *domain.User) (*domain.User, error) {
		created := *user
		created.ID = id
		return &created, nil
	}
}

// ---- Register ----

func TestRegister_TokenResolvesToNewUser(t *testing.T) {
	repo := &fakeUserRepo{create: echoCreate("user-42")}
	auth := newAuth(repo)

	_, token, err := auth.Register(context.Background(), "Test User", "test@example.com", "test123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userID, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("token resolves to %q, want user-42", userID)
	}
}

func TestRegister_StoresBcryptHashNotPlaintext(t *testing.T) {
	var stored *domain.User
	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			stored = user
			created := *user
			created.ID = "user-1"
			return &created, nil
		},
	}

	_, _, err := newAuth(repo).Register(context.Background(), "Test", "test@example.com", "test123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.PasswordHash == "test123" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("test123")); err != nil {
		t.Errorf("stored hash does not verify against the password: %v", err)
	}
}

func TestRegister_ValidationRules(t *testing.T) {
	repo := &fakeUserRepo{create: echoCreate("user-1")}

	tests := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "test@example.com", "test123"},
		{"blank name", "   ", "test@example.com", "test123"},
		{"malformed email", "Test", "not-an-email", "test123"},
		{"short password", "Test", "test@example.com", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := newAuth(repo).Register(context.Background(), tt.userName, tt.email, tt.password)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("want ValidationError, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail_ReturnsConflict(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	_, _, err := newAuth(repo).Register(context.Background(), "Test", "test@example.com", "test123")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	var stored *domain.User
	repo := &fakeUserRepo{
		create: func(_ context.Context, user *domain.User) (*domain.User, error) {
			stored = user
			return user, nil
		},
	}

	_, _, err := newAuth(repo).Register(context.Background(), "Test", "  Test@Example.COM ", "test123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Email != "test@example.com" {
		t.Errorf("stored email = %q, want normalized", stored.Email)
	}
}

// ---- Login ----

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func TestLogin_WrongPasswordAndUnknownEmail_Indistinguishable(t *testing.T) {
	known := &domain.User{ID: "user-1", Email: "test@example.com"}

	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email == known.Email {
				u := *known
				u.PasswordHash = hashOf(t, "correct-password")
				return &u, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	auth := newAuth(repo)

	_, _, errWrongPass := auth.Login(context.Background(), known.Email, "wrong-password")
	_, _, errNoUser := auth.Login(context.Background(), "nobody@example.com", "whatever")

	if !errors.Is(errWrongPass, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", errWrongPass)
	}
	if !errors.Is(errNoUser, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Error("error messages differ, enables account enumeration")
	}
}

func TestLogin_Success_TokenResolvesToUser(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{
				ID:           "user-7",
				Email:        "test@example.com",
				PasswordHash: hashOf(t, "test123"),
			}, nil
		},
	}
	auth := newAuth(repo)

	user, token, err := auth.Login(context.Background(), "test@example.com", "test123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-7" {
		t.Errorf("user ID = %q, want user-7", user.ID)
	}

	userID, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != "user-7" {
		t.Errorf("token resolves to %q, want user-7", userID)
	}
}

// ---- VerifyToken ----

func TestVerifyToken_Garbage_ReturnsTokenInvalid(t *testing.T) {
	auth := newAuth(&fakeUserRepo{})

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := auth.VerifyToken(raw); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("VerifyToken(%q): want ErrTokenInvalid, got %v", raw, err)
		}
	}
}

func TestVerifyToken_WrongKey_ReturnsTokenInvalid(t *testing.T) {
	repo := &fakeUserRepo{create: echoCreate("user-1")}

	otherAuth := usecase.NewAuthUsecase(repo, []byte("another-secret-that-is-32-chars!!!"))
	_, token, err := otherAuth.Register(context.Background(), "Test", "test@example.com", "test123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := newAuth(repo).VerifyToken(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

// ---- CurrentUser ----

func TestCurrentUser_DeletedUser_ReturnsNotFound(t *testing.T) {
	repo := &fakeUserRepo{
		findByID: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, err := newAuth(repo).CurrentUser(context.Background(), "gone")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}
