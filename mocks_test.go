package rolesync_test

import (
	"context"
	"database/sql"
	"io"
	"mime/multipart"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-rolesync"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockRoleSource implements rolesync.RoleSource
type MockRoleSource struct {
	mock.Mock
}

func (m *MockRoleSource) GetUserRoles(ctx context.Context, username, password string) ([]string, error) {
	args := m.Called(ctx, username, password)
	if roles, ok := args.Get(0).([]string); ok {
		return roles, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUsers implements rolesync.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByUsername(ctx context.Context, username string) (*rolesync.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*rolesync.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*rolesync.User, error) {
	args := m.Called(ctx, tx, username)
	if user, ok := args.Get(0).(*rolesync.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *rolesync.User, criteria ...repository.InsertCriteria) (*rolesync.User, error) {
	args := m.Called(ctx, record)
	if user, ok := args.Get(0).(*rolesync.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *rolesync.User, criteria ...repository.InsertCriteria) (*rolesync.User, error) {
	args := m.Called(ctx, tx, record)
	if user, ok := args.Get(0).(*rolesync.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) SetActive(ctx context.Context, id uuid.UUID, active bool) (*rolesync.User, error) {
	args := m.Called(ctx, id, active)
	if user, ok := args.Get(0).(*rolesync.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) (*rolesync.User, error) {
	args := m.Called(ctx, tx, id, active)
	if user, ok := args.Get(0).(*rolesync.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) UpdateRole(ctx context.Context, id uuid.UUID, role rolesync.UserRole) (*rolesync.User, error) {
	args := m.Called(ctx, id, role)
	if user, ok := args.Get(0).(*rolesync.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) UpdateRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role rolesync.UserRole) (*rolesync.User, error) {
	args := m.Called(ctx, tx, id, role)
	if user, ok := args.Get(0).(*rolesync.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockGrants implements rolesync.Grants
type MockGrants struct {
	mock.Mock
}

func (m *MockGrants) ListResourceIDs(ctx context.Context, kind rolesync.ResourceKind) ([]uuid.UUID, error) {
	args := m.Called(ctx, kind)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGrants) ListResourceIDsTx(ctx context.Context, tx bun.IDB, kind rolesync.ResourceKind) ([]uuid.UUID, error) {
	args := m.Called(ctx, tx, kind)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGrants) ListByUser(ctx context.Context, userID uuid.UUID) ([]*rolesync.Grant, error) {
	args := m.Called(ctx, userID)
	if grants, ok := args.Get(0).([]*rolesync.Grant); ok {
		return grants, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGrants) ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*rolesync.Grant, error) {
	args := m.Called(ctx, tx, userID)
	if grants, ok := args.Get(0).([]*rolesync.Grant); ok {
		return grants, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGrants) Insert(ctx context.Context, grant *rolesync.Grant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockGrants) InsertTx(ctx context.Context, tx bun.IDB, grant *rolesync.Grant) error {
	args := m.Called(ctx, tx, grant)
	return args.Error(0)
}

func (m *MockGrants) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGrants) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRepositoryManager implements rolesync.RepositoryManager. RunInTx runs
// the closure with a zero transaction; the store mocks never touch it.
type MockRepositoryManager struct {
	users  rolesync.Users
	grants rolesync.Grants
}

func NewMockRepositoryManager(users rolesync.Users, grants rolesync.Grants) *MockRepositoryManager {
	return &MockRepositoryManager{users: users, grants: grants}
}

func (m *MockRepositoryManager) Validate() error {
	return nil
}

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() rolesync.Users {
	return m.users
}

func (m *MockRepositoryManager) Grants() rolesync.Grants {
	return m.grants
}

func (m *MockRepositoryManager) Resources() repository.Repository[*rolesync.Resource] {
	return nil
}

// recordingSink collects activity events for assertions.
type recordingSink struct {
	events []rolesync.ActivityEvent
}

func (s *recordingSink) Record(ctx context.Context, event rolesync.ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) eventTypes() []rolesync.ActivityEventType {
	types := make([]rolesync.ActivityEventType, 0, len(s.events))
	for _, event := range s.events {
		types = append(types, event.EventType)
	}
	return types
}

// MockTokenService implements rolesync.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(identity rolesync.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(token string) (*rolesync.JWTClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*rolesync.JWTClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockReconciler implements rolesync.Reconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, creds rolesync.Credentials) (*rolesync.Result, error) {
	args := m.Called(ctx, creds)
	if result, ok := args.Get(0).(*rolesync.Result); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTokenConfig implements rolesync.TokenConfig
type MockTokenConfig struct {
	mock.Mock
}

func (m *MockTokenConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTokenConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTokenConfig) GetTokenExpiration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockTokenConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTokenConfig) GetAudience() []string {
	args := m.Called()
	if audience, ok := args.Get(0).([]string); ok {
		return audience
	}
	return nil
}

func (m *MockTokenConfig) GetRejectedRouteKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTokenConfig) GetRejectedRouteDefault() string {
	args := m.Called()
	return args.String(0)
}

// MockLoginPayload implements rolesync.LoginPayload
type MockLoginPayload struct {
	Username string
	Password string
}

func (m MockLoginPayload) GetUsername() string {
	return m.Username
}

func (m MockLoginPayload) GetPassword() string {
	return m.Password
}

// MockContext mocks the router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) QueryValues(key string) []string {
	args := m.Called(key)
	if vals, ok := args.Get(0).([]string); ok {
		return vals
	}
	return nil
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) LocalsMerge(key any, value map[string]any) map[string]any {
	args := m.Called(key, value)
	if merged, ok := args.Get(0).(map[string]any); ok {
		return merged
	}
	return nil
}

func (m *MockContext) FormFile(key string) (*multipart.FileHeader, error) {
	args := m.Called(key)
	if header, ok := args.Get(0).(*multipart.FileHeader); ok {
		return header, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) IP() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) SendStatus(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) SendStream(r io.Reader) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockContext) RouteName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) RouteParams() map[string]string {
	args := m.Called()
	if params, ok := args.Get(0).(map[string]string); ok {
		return params
	}
	return nil
}
