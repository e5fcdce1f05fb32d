package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/middleware"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/services"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/uploads"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeNotifier records every notification instead of sending mail.
type fakeNotifier struct {
	created     []uint
	closed      []uint
	reopened    []uint
	statusSent  []uint
	resetTokens map[string]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{resetTokens: map[string]string{}}
}

func (f *fakeNotifier) TicketCreated(t *models.Ticket, staff *models.User) { f.created = append(f.created, t.ID) }
func (f *fakeNotifier) TicketClosed(t *models.Ticket, by *models.User)    { f.closed = append(f.closed, t.ID) }
func (f *fakeNotifier) TicketReopened(t *models.Ticket, by *models.User)  { f.reopened = append(f.reopened, t.ID) }
func (f *fakeNotifier) StatusChanged(t *models.Ticket)                    { f.statusSent = append(f.statusSent, t.ID) }
func (f *fakeNotifier) PasswordReset(user *models.User, token string)     { f.resetTokens[user.Email] = token }

type testApp struct {
	router   *gin.Engine
	db       *gorm.DB
	users    services.UserService
	sessions services.SessionService
	tickets  services.TicketService
	notifier *fakeNotifier
}

func setupTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Ticket{}, &models.Comment{}, &models.Session{}))

	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	notifier := newFakeNotifier()
	users := services.NewUserService(db)
	sessions := services.NewSessionService(db, time.Hour)
	tickets := services.NewTicketService(db)
	comments := services.NewCommentService(db)

	authController := NewAuthController(users, sessions, notifier, "test-secret-key", time.Hour)
	ticketController := NewTicketController(tickets, comments, store, notifier, time.UTC)
	adminController := NewAdminController(tickets, notifier)

	router := gin.New()
	router.POST("/api/v1/auth/register", authController.Register)
	router.POST("/api/v1/auth/login", authController.Login)
	router.POST("/api/v1/auth/forgot-password", authController.ForgotPassword)
	router.POST("/api/v1/auth/reset-password", authController.ResetPassword)

	protected := router.Group("/api/v1")
	protected.Use(middleware.SessionAuth(sessions))
	{
		protected.POST("/auth/logout", authController.Logout)
		protected.GET("/tickets", ticketController.ListTickets)
		protected.POST("/tickets", ticketController.CreateTicket)
		protected.GET("/tickets/:id", ticketController.GetTicket)
		protected.GET("/tickets/:id/attachment", ticketController.DownloadAttachment)
		protected.POST("/tickets/:id/comments", ticketController.AddComment)
		protected.POST("/tickets/:id/actions", ticketController.StaffAction)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.PUT("/tickets/:id/status", adminController.UpdateStatus)
			admin.PUT("/tickets/:id/assignee", adminController.UpdateAssignee)
		}
	}

	return &testApp{
		router:   router,
		db:       db,
		users:    users,
		sessions: sessions,
		tickets:  tickets,
		notifier: notifier,
	}
}

// createUser registers a user directly through the service layer.
func (a *testApp) createUser(t *testing.T, username, email, password, role string) *models.User {
	user := &models.User{Username: username, Email: email, Role: role}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, a.users.CreateUser(user))
	return user
}

// loginAs mints a session and returns the cookie to attach to requests.
func (a *testApp) loginAs(t *testing.T, user *models.User) *http.Cookie {
	session, err := a.sessions.CreateSession(user.ID, "127.0.0.1", "test-agent")
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookieName, Value: session.Token}
}

// do executes a request against the router and returns the recorder.
func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// createTicketFor inserts a ticket for the staff user via the service layer.
func (a *testApp) createTicketFor(t *testing.T, staff *models.User, subject, priority string) *models.Ticket {
	ticket := &models.Ticket{
		StaffID:      staff.ID,
		PracticeName: "Lakeside Family Practice",
		ProviderName: "Dr. Ahmed",
		Subject:      subject,
		Description:  "details",
		Priority:     priority,
	}
	require.NoError(t, a.tickets.CreateTicket(ticket))
	return ticket
}
