package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"conferencehub/internal/delivery/http/controllers"
	"conferencehub/internal/delivery/http/middleware"
	"conferencehub/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	enrollmentController *controllers.EnrollmentController,
	ticketController *controllers.TicketController,
	activityController *controllers.ActivityController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/github", authController.LoginWithGitHub)

	// Enrollments
	mux.HandleFunc("GET /enrollments", auth(enrollmentController.Get))
	mux.HandleFunc("POST /enrollments", auth(enrollmentController.Upsert))

	// Tickets and payments
	mux.HandleFunc("GET /tickets/types", auth(ticketController.ListTypes))
	mux.HandleFunc("POST /tickets", auth(ticketController.Reserve))
	mux.HandleFunc("GET /tickets", auth(ticketController.Get))
	mux.HandleFunc("POST /tickets/{ticketID}/payments", auth(ticketController.Pay))
	mux.HandleFunc("GET /tickets/{ticketID}/payments", auth(ticketController.GetPayment))

	// Activities
	mux.HandleFunc("GET /activities", auth(activityController.GetDays))
	mux.HandleFunc("GET /activities/days/{date}", auth(activityController.GetDaySchedule))
	mux.HandleFunc("POST /activities/subscription", auth(activityController.Subscribe))
	mux.HandleFunc("GET /activities/{activityID}", auth(activityController.GetSubscription))
	mux.HandleFunc("DELETE /activities/{activityID}", auth(activityController.Unsubscribe))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
