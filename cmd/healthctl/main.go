package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sudha-nunna/healthcare-project/internal/bookmarks"
	"github.com/sudha-nunna/healthcare-project/internal/client"
	"github.com/sudha-nunna/healthcare-project/internal/config"
	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/internal/querycache"
	"github.com/sudha-nunna/healthcare-project/internal/session"
	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
	"github.com/sudha-nunna/healthcare-project/pkg/logger"
	"github.com/sudha-nunna/healthcare-project/pkg/metrics"
)

const usage = `healthctl - HealthCompare command line

Usage: healthctl <command> [flags]

Commands:
  signup          -name -email -password -confirm
  login           -email -password
  logout
  whoami
  doctors         [-specialty] [-no-fallback]
  slots           -doctor -date
  book            -doctor -date -time
  cancel          -id
  profile
  update-profile  [-name] [-phone] [-address] [-blood-type]
  insurance
  set-insurance   -provider -policy [-from] [-to]
  verify          -service -cost
  reviews         -doctor
  review          -doctor -rating [-comment]
  prices
  estimate        -service -hospital
  upload          -file
  save-doctor     -id -name [-specialty] [-fee]
  unsave-doctor   -id
  saved
  health
`

type app struct {
	cfg       *config.Config
	log       *logger.Logger
	store     *session.Store
	api       *client.CachedClient
	bookmarks *bookmarks.Store
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Log.Level)})
	ctx := context.Background()

	backend, err := newSessionBackend(cfg.Session)
	if err != nil {
		log.Fatal(err, "failed to initialize session backend")
	}
	store, err := session.NewStore(ctx, backend, log)
	if err != nil {
		log.Fatal(err, "failed to initialize session store")
	}

	mtr := metrics.NewMetrics("healthcompare", prometheus.NewRegistry())
	base, err := client.New(client.Config{
		BaseURL:      cfg.API.BaseURL,
		Timeout:      cfg.API.Timeout(),
		Session:      store,
		RateLimitRPS: cfg.API.RateLimitRPS,
		Logger:       log,
		Metrics:      mtr,
	})
	if err != nil {
		log.Fatal(err, "failed to initialize API client")
	}

	cache := querycache.New(querycache.Config{
		TTL:             cfg.Cache.TTL(),
		CleanupInterval: cfg.Cache.CleanupInterval(),
		MaxReadRetries:  cfg.API.MaxReadRetries,
		Logger:          log,
		Metrics:         mtr,
	})

	marks, err := bookmarks.NewStore(filepath.Join(filepath.Dir(cfg.Session.Path), "saved_doctors.json"))
	if err != nil {
		log.Fatal(err, "failed to initialize bookmarks store")
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		store:     store,
		api:       client.NewCached(base, cache),
		bookmarks: marks,
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		a.connectivityHint(ctx, err)
		os.Exit(1)
	}
}

func newSessionBackend(cfg config.SessionConfig) (session.Backend, error) {
	switch cfg.Backend {
	case "memory":
		return session.NewMemoryBackend(), nil
	case "redis":
		return session.NewRedisBackend(session.RedisConfig{
			URL:     cfg.RedisURL,
			Channel: cfg.Channel,
		})
	default:
		return session.NewFileBackend(cfg.Path)
	}
}

// connectivityHint runs the health self-test after a transport failure
// so the user learns whether the backend is reachable at all.
func (a *app) connectivityHint(ctx context.Context, err error) {
	if !apierror.IsNetworkUnreachable(err) && !apierror.IsTimeout(err) {
		return
	}
	if _, herr := a.api.Health(ctx); herr != nil {
		fmt.Fprintf(os.Stderr, "connectivity check: backend at %s is not responding\n", a.api.BaseURL())
		return
	}
	fmt.Fprintf(os.Stderr, "connectivity check: backend at %s is reachable, retry the command\n", a.api.BaseURL())
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return a.cmdSignup(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.api.Logout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "doctors":
		return a.cmdDoctors(ctx, args)
	case "slots":
		return a.cmdSlots(ctx, args)
	case "book":
		return a.cmdBook(ctx, args)
	case "cancel":
		return a.cmdCancel(ctx, args)
	case "profile":
		return a.cmdProfile(ctx)
	case "update-profile":
		return a.cmdUpdateProfile(ctx, args)
	case "insurance":
		return a.cmdInsurance(ctx)
	case "set-insurance":
		return a.cmdSetInsurance(ctx, args)
	case "verify":
		return a.cmdVerify(ctx, args)
	case "reviews":
		return a.cmdReviews(ctx, args)
	case "review":
		return a.cmdReview(ctx, args)
	case "prices":
		return a.cmdPrices(ctx)
	case "estimate":
		return a.cmdEstimate(ctx, args)
	case "upload":
		return a.cmdUpload(ctx, args)
	case "save-doctor":
		return a.cmdSaveDoctor(args)
	case "unsave-doctor":
		return a.cmdUnsaveDoctor(args)
	case "saved":
		return a.cmdSaved()
	case "health":
		return a.cmdHealth(ctx)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation")
	fs.Parse(args)

	sess, err := a.api.Signup(ctx, *name, *email, *password, *confirm)
	if err != nil {
		return err
	}
	fmt.Printf("signed up and logged in as %s\n", sess.User.Name)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	sess, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", sess.User.Name)
	return nil
}

func (a *app) cmdWhoami() error {
	sess := a.store.Current()
	if !sess.Active() {
		fmt.Println("not logged in")
		return nil
	}
	return printJSON(sess.User)
}

func (a *app) cmdDoctors(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("doctors", flag.ExitOnError)
	specialty := fs.String("specialty", "", "filter by specialty substring")
	noFallback := fs.Bool("no-fallback", false, "do not retry unfiltered when the result is empty")
	fs.Parse(args)

	var specialists []model.Specialist
	var err error
	if *noFallback {
		specialists, err = a.api.ListSpecialists(ctx, *specialty)
	} else {
		specialists, err = a.api.ListSpecialistsWithFallback(ctx, *specialty)
	}
	if err != nil {
		return err
	}

	for _, sp := range specialists {
		fmt.Printf("%-8s %-22s %-15s %.1f★ (%d) $%.0f %s\n",
			sp.ID, sp.Name, sp.Specialty, sp.Rating, sp.ReviewCount, sp.ConsultationFee, sp.Location)
	}
	return nil
}

func (a *app) cmdSlots(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("slots", flag.ExitOnError)
	doctor := fs.String("doctor", "", "doctor id")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	fs.Parse(args)

	slots, err := a.api.GetSlots(ctx, *doctor, *date)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Println("no available slots for the selected date")
		return nil
	}
	fmt.Println(strings.Join(slots, " "))
	return nil
}

func (a *app) cmdBook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	doctor := fs.String("doctor", "", "doctor id")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	slot := fs.String("time", "", "time slot (HH:MM)")
	fs.Parse(args)

	// UI-level guard: never invoke the operation while logged out.
	sess := a.store.Current()
	if sess.UserID() == "" {
		return fmt.Errorf("you must be logged in to book an appointment")
	}

	apt, err := a.api.BookAppointment(ctx, model.BookingRequest{
		UserID:   sess.UserID(),
		DoctorID: *doctor,
		Date:     *date,
		Time:     *slot,
	})
	if err != nil {
		return err
	}
	fmt.Printf("booked %s with %s on %s at %s\n", apt.ID, apt.Doctor.Name, apt.Date, apt.Time)
	return nil
}

func (a *app) cmdCancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	id := fs.String("id", "", "appointment id")
	fs.Parse(args)

	if err := a.api.CancelAppointment(ctx, *id); err != nil {
		return err
	}
	fmt.Println("appointment cancelled")
	return nil
}

func (a *app) cmdProfile(ctx context.Context) error {
	profile, err := a.api.GetProfile(ctx)
	if err != nil {
		return err
	}
	return printJSON(profile)
}

func (a *app) cmdUpdateProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "address")
	bloodType := fs.String("blood-type", "", "blood type")
	fs.Parse(args)

	var updates model.ProfileUpdate
	if *name != "" {
		updates.Name = name
	}
	if *phone != "" {
		updates.Phone = phone
	}
	if *address != "" {
		updates.Address = address
	}
	if *bloodType != "" {
		updates.BloodType = bloodType
	}

	user, err := a.api.UpdateProfile(ctx, updates)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func (a *app) cmdInsurance(ctx context.Context) error {
	ins, err := a.api.GetInsurance(ctx)
	if err != nil {
		return err
	}
	if ins == nil {
		fmt.Println("no insurance on file")
		return nil
	}
	return printJSON(ins)
}

func (a *app) cmdSetInsurance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-insurance", flag.ExitOnError)
	provider := fs.String("provider", "", "insurance provider")
	policy := fs.String("policy", "", "policy number")
	from := fs.String("from", "", "valid from (YYYY-MM-DD)")
	to := fs.String("to", "", "valid to (YYYY-MM-DD)")
	fs.Parse(args)

	ins, err := a.api.UpdateInsurance(ctx, model.InsuranceUpdate{
		Provider:     *provider,
		PolicyNumber: *policy,
		ValidFrom:    *from,
		ValidTo:      *to,
	})
	if err != nil {
		return err
	}
	return printJSON(ins)
}

func (a *app) cmdVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	service := fs.String("service", "", "service id")
	cost := fs.Float64("cost", 0, "service cost")
	fs.Parse(args)

	check, err := a.api.VerifyInsurance(ctx, *service, *cost)
	if err != nil {
		return err
	}
	return printJSON(check)
}

func (a *app) cmdReviews(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reviews", flag.ExitOnError)
	doctor := fs.String("doctor", "", "doctor id")
	fs.Parse(args)

	reviews, err := a.api.ListDoctorReviews(ctx, *doctor)
	if err != nil {
		return err
	}
	return printJSON(reviews)
}

func (a *app) cmdReview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	doctor := fs.String("doctor", "", "doctor id")
	rating := fs.Float64("rating", 0, "rating 1-5")
	comment := fs.String("comment", "", "review text")
	fs.Parse(args)

	review, err := a.api.CreateReview(ctx, model.ReviewRequest{
		DoctorID: *doctor,
		Rating:   *rating,
		Comment:  *comment,
	})
	if err != nil {
		return err
	}
	return printJSON(review)
}

func (a *app) cmdPrices(ctx context.Context) error {
	prices, err := a.api.GetPrices(ctx)
	if err != nil {
		return err
	}
	return printJSON(prices)
}

func (a *app) cmdEstimate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	service := fs.String("service", "", "service id")
	hospital := fs.String("hospital", "", "hospital name")
	fs.Parse(args)

	estimate, err := a.api.GetPriceEstimate(ctx, *service, *hospital)
	if err != nil {
		return err
	}
	return printJSON(estimate)
}

func (a *app) cmdUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	path := fs.String("file", "", "file to upload")
	fs.Parse(args)

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.api.Upload(ctx, filepath.Base(*path), f)
	if err != nil {
		return err
	}
	fmt.Printf("uploaded: %s\n", result.URL)
	return nil
}

func (a *app) cmdSaveDoctor(args []string) error {
	fs := flag.NewFlagSet("save-doctor", flag.ExitOnError)
	id := fs.String("id", "", "doctor id")
	name := fs.String("name", "", "doctor name")
	specialty := fs.String("specialty", "", "specialization")
	fee := fs.Float64("fee", 0, "consultation fee")
	fs.Parse(args)

	return a.bookmarks.Save(bookmarks.SavedProvider{
		ID:             *id,
		Name:           *name,
		Specialization: *specialty,
		Fee:            *fee,
	})
}

func (a *app) cmdUnsaveDoctor(args []string) error {
	fs := flag.NewFlagSet("unsave-doctor", flag.ExitOnError)
	id := fs.String("id", "", "doctor id")
	fs.Parse(args)

	return a.bookmarks.Remove(*id)
}

func (a *app) cmdSaved() error {
	providers, err := a.bookmarks.List()
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		fmt.Println("no saved providers")
		return nil
	}
	return printJSON(providers)
}

func (a *app) cmdHealth(ctx context.Context) error {
	status, err := a.api.Health(ctx)
	if err != nil {
		return err
	}
	return printJSON(status)
}
