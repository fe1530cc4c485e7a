package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/ucu/innovators-hub/internal/app/models"
	"github.com/ucu/innovators-hub/internal/app/repositories"
	"github.com/ucu/innovators-hub/internal/app/repositories/memory"
	"github.com/ucu/innovators-hub/internal/pkg/auth"
	"github.com/ucu/innovators-hub/internal/pkg/helpers"
)

const testPassword = "secret1"

// fakeHasher avoids bcrypt cost in tests that provision many accounts
type fakeHasher struct{}

func (fakeHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (fakeHasher) Verify(hashed, pw string) bool  { return hashed == "hashed:"+pw }

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

// seqRandom yields 0, 1, 2, ... so every draw differs from the previous one
type seqRandom struct {
	next int
}

func (r *seqRandom) Intn(n int) int {
	v := r.next % n
	r.next++
	return v
}

// fixedRandom always yields the same value
type fixedRandom int

func (r fixedRandom) Intn(n int) int { return int(r) % n }

type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) Save(fh *multipart.FileHeader, subPath string) (string, error) {
	return "/uploads/" + subPath + "/" + fh.Filename, nil
}

func (s *fakeStorage) Delete(ref string) error {
	s.deleted = append(s.deleted, ref)
	return nil
}

var errMailDown = errors.New("smtp unavailable")

type fixture struct {
	t      *testing.T
	ctx    context.Context
	now    time.Time
	repos  *repositories.Repositories
	svc    *Services
	mailer *fakeMailer
	files  *fakeStorage
	tokens *auth.JWTService

	engineering *models.Faculty
	agriculture *models.Faculty
	computing   *models.Department
	civil       *models.Department
	agronomy    *models.Department

	admin        *models.User
	facultyAdmin *models.User
	supervisor   *models.User // computing
	supervisor2  *models.User // civil
	student      *models.User // computing
	student2     *models.User // civil
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithRandom(t, &seqRandom{})
}

func newFixtureWithRandom(t *testing.T, random helpers.RandomSource) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		now:    time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		mailer: &fakeMailer{},
		files:  &fakeStorage{},
		tokens: auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"}),
	}

	db := memory.Open()
	db.Now = f.tick
	f.repos = memory.NewRepositories(db)
	f.svc = NewServices(Dependencies{
		Repos:       f.repos,
		Hasher:      fakeHasher{},
		Tokens:      f.tokens,
		Mailer:      f.mailer,
		Files:       f.files,
		Random:      random,
		Now:         func() time.Time { return f.now },
		FrontendURL: "http://hub.test",
		Logger:      zerolog.Nop(),
	})

	f.engineering = f.faculty("Faculty of Engineering, Design and Technology")
	f.agriculture = f.faculty("Faculty of Agricultural Sciences")
	f.computing = f.department(f.engineering, "Computing")
	f.civil = f.department(f.engineering, "Civil Engineering")
	f.agronomy = f.department(f.agriculture, "Agronomy")

	f.admin = f.user("admin@ucu.ac.ug", models.RoleAdmin, nil, nil)
	f.facultyAdmin = f.user("dean@ucu.ac.ug", models.RoleFacultyAdmin, f.engineering, nil)
	f.supervisor = f.user("sup1@ucu.ac.ug", models.RoleSupervisor, f.engineering, f.computing)
	f.supervisor2 = f.user("sup2@ucu.ac.ug", models.RoleSupervisor, f.engineering, f.civil)
	f.student = f.user("student1@ucu.ac.ug", models.RoleStudent, f.engineering, f.computing)
	f.student2 = f.user("student2@ucu.ac.ug", models.RoleStudent, f.engineering, f.civil)
	return f
}

// tick advances the store clock so creation order is strict
func (f *fixture) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fixture) faculty(name string) *models.Faculty {
	fac, err := f.svc.Faculty.EnsureFaculty(f.ctx, name)
	require.NoError(f.t, err)
	return fac
}

func (f *fixture) department(fac *models.Faculty, name string) *models.Department {
	d, err := f.svc.Faculty.EnsureDepartment(f.ctx, fac.ID, name)
	require.NoError(f.t, err)
	return d
}

func (f *fixture) user(email string, role models.RoleType, fac *models.Faculty, dept *models.Department) *models.User {
	f.t.Helper()
	u := &models.User{
		Name:     email,
		Email:    email,
		Password: "hashed:" + testPassword,
		Role:     role,
		IsActive: true,
	}
	if fac != nil {
		u.FacultyID = &fac.ID
	}
	if dept != nil {
		u.DepartmentID = &dept.ID
	}
	if role == models.RoleStudent {
		number := "B" + email
		u.AccessNumber = &number
	}
	require.NoError(f.t, f.repos.UserRepository.Create(f.ctx, u))
	return u
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string  { return &s }
