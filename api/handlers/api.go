package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/linesmerrill/relief-api/api"
	"github.com/linesmerrill/relief-api/config"
	"github.com/linesmerrill/relief-api/databases"
	"github.com/linesmerrill/relief-api/services"
)

const requestTimeout = 30 * time.Second

// App stores the router, the db connection and the services behind the
// routes, so they can be reused
type App struct {
	Router  *mux.Router
	Config  config.Config
	Metrics *api.MetricsCollector
	Hub     *NotificationHub

	Emergencies *services.EmergencyService
	Mailer      services.Mailer

	guard    *api.SessionGuard
	client   databases.ClientHelper
	dbHelper databases.DatabaseHelper
	closers  []io.Closer
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	if err = client.Connect(); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.client = client
	zap.S().Info("relief-api has connected to the database")

	return a.Wire(databases.NewDatabase(&a.Config, client))
}

// Wire builds the services over db and registers every route
func (a *App) Wire(db databases.DatabaseHelper) error {
	if a.Config.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	a.dbHelper = db

	if a.Config.StripeSecretKey != "" {
		stripe.Key = a.Config.StripeSecretKey
	} else {
		zap.S().Warn("STRIPE_SECRET_KEY is not set, donation checkout will fail")
	}

	udb := databases.NewUserDatabase(db)
	authService := services.NewAuthService(udb, a.Config.JWTSecret, a.Config.TokenTTL)
	payout := services.NewPayoutService(databases.NewPayoutDetailsDatabase(db))
	ledger := services.NewLedger(
		databases.NewIncentiveDatabase(db),
		databases.NewCoinAccountDatabase(db),
		databases.NewTransactionDatabase(db),
		payout,
	)

	a.Hub = NewNotificationHub()
	notifier := services.NewNotifier(databases.NewNotificationDatabase(db), udb, a.Hub)
	if len(a.Config.KafkaBrokers) > 0 {
		k := services.NewKafkaChannel(a.Config.KafkaBrokers, a.Config.KafkaTopic)
		notifier.AddChannel(k)
		a.closers = append(a.closers, k)
		zap.S().Infow("kafka notifications enabled", "brokers", a.Config.KafkaBrokers, "topic", a.Config.KafkaTopic)
	}
	if a.Config.SendgridAPIKey != "" {
		a.Mailer = services.NewSendgridMailer(a.Config.SendgridAPIKey, a.Config.SendgridFromName, a.Config.SendgridFromEmail)
		notifier.AddChannel(&services.MailChannel{Mailer: a.Mailer, UDB: udb})
	}

	var store services.MediaStore
	if a.Config.CloudinaryURL != "" {
		cs, err := services.NewCloudinaryStore(a.Config.CloudinaryURL)
		if err != nil {
			return err
		}
		store = cs
	} else {
		zap.S().Warn("CLOUDINARY_URL is not set, media uploads are rejected")
	}

	a.Emergencies = services.NewEmergencyService(databases.NewEmergencyDatabase(db), ledger, notifier, a.Config.IncentivePerCompletion)
	if a.Metrics == nil {
		a.Metrics = api.GetMetrics()
	}
	a.guard = api.NewSessionGuard(authService, a.Config.TokenTTL)

	a.Router = a.routes(
		User{Auth: authService},
		Emergency{Service: a.Emergencies, Media: services.NewMediaService(store)},
		Notification{Notifier: notifier},
		Incentive{Ledger: ledger, Payout: payout},
		Donation{Service: services.NewDonationService(databases.NewDonationDatabase(db), a.Config.BaseURL, a.Config.DonationBank)},
	)
	return nil
}

func (a *App) routes(u User, e Emergency, n Notification, i Incentive, d Donation) *mux.Router {
	r := api.New(a.Metrics)
	auth := a.guard.Middleware
	m := Metrics{Collector: a.Metrics}

	// websocket connections outlive the request timeout
	r.Handle("/ws/notifications", auth(a.Hub)).Methods("GET")

	s := r.NewRoute().Subrouter()
	s.Use(api.TimeoutMiddleware(requestTimeout))

	s.HandleFunc("/register", u.RegisterHandler).Methods("POST")
	s.HandleFunc("/login", u.LoginHandler).Methods("POST")
	s.HandleFunc("/loginMeta", u.LoginMetaHandler).Methods("POST")
	s.Handle("/auth/token", a.guard.Credentials(http.HandlerFunc(u.TokenHandler))).Methods("POST")
	s.Handle("/users/profile", auth(http.HandlerFunc(u.ProfileHandler))).Methods("GET")
	s.Handle("/users/profile", auth(http.HandlerFunc(u.UpdateProfileHandler))).Methods("PUT")

	s.Handle("/metrics/summary", auth(http.HandlerFunc(m.SummaryHandler))).Methods("GET")

	s.Handle("/emergency", auth(http.HandlerFunc(e.CreateEmergencyHandler))).Methods("POST")
	s.Handle("/incidents", auth(http.HandlerFunc(e.IncidentsHandler))).Methods("GET")
	s.Handle("/allemergencies", auth(http.HandlerFunc(e.IncidentsHandler))).Methods("GET")
	s.Handle("/active", auth(http.HandlerFunc(e.ActiveEmergenciesHandler))).Methods("GET")
	s.Handle("/my-reports", auth(http.HandlerFunc(e.MyReportsHandler))).Methods("GET")
	s.Handle("/volunteer/history", auth(http.HandlerFunc(e.VolunteerHistoryHandler))).Methods("GET")
	s.Handle("/dashboardstats", auth(http.HandlerFunc(e.DashboardStatsHandler))).Methods("GET")

	s.Handle("/notifications", auth(http.HandlerFunc(n.NotificationsHandler))).Methods("GET")
	s.Handle("/notifications", auth(http.HandlerFunc(n.CreateNotificationHandler))).Methods("POST")
	s.Handle("/notifications/mark-all-read", auth(http.HandlerFunc(n.MarkAllReadHandler))).Methods("POST", "PATCH")
	s.Handle("/notifications/unread-count", auth(http.HandlerFunc(n.UnreadCountHandler))).Methods("GET")

	s.Handle("/incentives/eligibility", auth(http.HandlerFunc(i.EligibilityHandler))).Methods("GET")
	s.Handle("/incentives/redeem", auth(http.HandlerFunc(i.RedeemHandler))).Methods("POST")
	s.Handle("/incentives/transactions", auth(http.HandlerFunc(i.TransactionsHandler))).Methods("GET")
	s.Handle("/coins/balance", auth(http.HandlerFunc(i.BalanceHandler))).Methods("GET")
	s.Handle("/coins/withdraw/bank", auth(http.HandlerFunc(i.WithdrawBankHandler))).Methods("POST")
	s.Handle("/coins/withdraw/wallet", auth(http.HandlerFunc(i.WithdrawWalletHandler))).Methods("POST")
	s.Handle("/coins/bank-details", auth(http.HandlerFunc(i.PayoutDetailsHandler))).Methods("GET")
	s.Handle("/coins/save-bank-details", auth(http.HandlerFunc(i.SaveBankDetailsHandler))).Methods("POST")
	s.Handle("/coins/wallet-details", auth(http.HandlerFunc(i.PayoutDetailsHandler))).Methods("GET")
	s.Handle("/coins/save-wallet-details", auth(http.HandlerFunc(i.SaveWalletDetailsHandler))).Methods("POST")

	s.Handle("/donation/checkout", auth(http.HandlerFunc(d.CheckoutHandler))).Methods("POST")
	s.Handle("/donation/bank-details", auth(http.HandlerFunc(d.BankDetailsHandler))).Methods("GET")

	// emergency id routes last so they never shadow the paths above
	const id = "/{emergencyId:[0-9a-fA-F]{24}}"
	s.Handle(id+"/volunteer", auth(http.HandlerFunc(e.VolunteerHandler))).Methods("POST")
	s.Handle(id+"/complete", auth(http.HandlerFunc(e.CompleteHandler))).Methods("PUT")
	s.Handle(id+"/approve", auth(http.HandlerFunc(e.ApproveHandler))).Methods("PUT")
	s.Handle(id, auth(http.HandlerFunc(e.EmergencyHandler))).Methods("GET")

	return r
}

// Close releases the delivery channels and the database connection
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DB returns the database the app was wired to
func (a *App) DB() databases.DatabaseHelper {
	return a.dbHelper
}
