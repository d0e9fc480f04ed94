package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"course-commerce/internal/model"
	"course-commerce/internal/repository"
	"course-commerce/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type stubUsers struct {
	repository.UserRepository
	user *model.User
}

func (s *stubUsers) FindByID(id uuid.UUID) (*model.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, errors.New("record not found")
	}
	return s.user, nil
}

func newProtectedApp(issuer *jwt.Issuer, users repository.UserRepository, privilege string) *fiber.App {
	app := fiber.New()
	app.Get("/ledger", RequireAuth(issuer, users), RequirePrivilege(privilege), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_email").(string))
	})
	return app
}

func TestRequireAuthAndPrivilege(t *testing.T) {
	issuer := jwt.NewIssuer("secret", time.Hour)
	user := &model.User{Email: "admin@example.com", IsActive: true, TokenVersion: "v1"}
	user.ID = uuid.New()
	users := &stubUsers{user: user}

	token := func(version string, privs ...string) string {
		tok, err := issuer.Generate(jwt.Subject{
			UserID:       user.ID,
			Email:        user.Email,
			Privileges:   privs,
			TokenVersion: version,
		})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		return tok
	}

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + token("v1", model.PrivTransactionView), fiber.StatusUnauthorized},
		{"garbage token", "Bearer nope", fiber.StatusUnauthorized},
		{"replaced session", "Bearer " + token("v0", model.PrivTransactionView), fiber.StatusUnauthorized},
		{"missing privilege", "Bearer " + token("v1", model.PrivTransactionOwn), fiber.StatusForbidden},
		{"allowed", "Bearer " + token("v1", model.PrivTransactionView), fiber.StatusOK},
	}

	app := newProtectedApp(issuer, users, model.PrivTransactionView)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ledger", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.status)
			}
		})
	}
}

func TestRequireAuthInactiveUser(t *testing.T) {
	issuer := jwt.NewIssuer("secret", time.Hour)
	user := &model.User{Email: "gone@example.com", IsActive: false, TokenVersion: "v1"}
	user.ID = uuid.New()

	tok, err := issuer.Generate(jwt.Subject{UserID: user.ID, Email: user.Email, TokenVersion: "v1"})
	if err != nil {
		t.Fatal(err)
	}

	app := newProtectedApp(issuer, &stubUsers{user: user}, model.PrivTransactionOwn)
	req := httptest.NewRequest("GET", "/ledger", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRequireAnyPrivilege(t *testing.T) {
	app := fiber.New()
	app.Get("/courses", func(c *fiber.Ctx) error {
		c.Locals("user_privileges", []string{model.PrivCourseUpdate})
		return c.Next()
	}, RequireAnyPrivilege(model.PrivCourseCreate, model.PrivCourseUpdate), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/courses", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		if token != tc.token || ok != tc.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}
