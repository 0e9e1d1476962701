package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/jwalitptl/eyecare-portal/internal/client"
	"github.com/jwalitptl/eyecare-portal/internal/session"
	"github.com/jwalitptl/eyecare-portal/internal/wizard"
	"github.com/jwalitptl/eyecare-portal/pkg/errors"
)

type command func(ctx context.Context, args []string) error

type app struct {
	client *client.Client
	sess   *session.Session
	in     *bufio.Reader
	out    io.Writer
	logger zerolog.Logger
}

func (a *app) commands() map[string]command {
	return map[string]command{
		"signin":  a.signIn,
		"signup":  a.signUp,
		"logout":  a.logout,
		"status":  a.status,
		"predict": a.predict,
		"history": a.history,
		"doctors": a.doctors,
		"report":  a.report,
	}
}

func flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) signIn(ctx context.Context, args []string) error {
	fs := flags("signin")
	email := fs.String("email", "", "account e-mail")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *email == "" {
		if *email, err = a.prompt("Email"); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.prompt("Password"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(*email) == "" || *password == "" {
		return errors.NewValidation("Please enter both email and password", nil)
	}

	result, err := a.client.SignIn(ctx, a.sess, strings.TrimSpace(*email), *password)
	if err != nil {
		return err
	}
	outcome := result.Outcome()
	if outcome != client.LoginSucceeded {
		return errors.NewValidation(outcome.Message(), nil)
	}
	fmt.Fprintln(a.out, "Signed in.")
	return nil
}

// signUp walks the sign-up wizard on the terminal. Typing "back" at the
// OTP prompt returns to the credentials step.
func (a *app) signUp(ctx context.Context, _ []string) error {
	flow := wizard.NewFlow(a.client, a.sess, wizard.State{Step: wizard.StepCredentials}, a.logger, nil)
	if flow.Begin(ctx) != "" {
		fmt.Fprintln(a.out, "Already signed in.")
		return nil
	}

	shown := wizard.Step(-1)
	for flow.Step() != wizard.StepComplete {
		step := flow.Step()
		if step != shown {
			fmt.Fprintf(a.out, "\n%s\n%s\n", step.Title(), step.Subtitle())
			shown = step
		}

		var err error
		switch step {
		case wizard.StepCredentials:
			err = a.credentialsStep(ctx, flow)
		case wizard.StepOTPVerification:
			err = a.otpStep(ctx, flow)
		case wizard.StepRegistration:
			err = a.registrationStep(ctx, flow)
		}
		if err != nil {
			// Prompt errors end the wizard. API errors keep the step for a retry.
			if !isAppError(err) {
				return err
			}
			fmt.Fprintln(a.out, message(err))
		}
	}
	return nil
}

func (a *app) credentialsStep(ctx context.Context, flow *wizard.Flow) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := a.prompt("Password")
	if err != nil {
		return err
	}

	result, err := flow.SubmitCredentials(ctx, email, password)
	if err != nil {
		return err
	}
	if result.OTPSent {
		fmt.Fprintln(a.out, firstNonEmpty(result.Message, "OTP sent to your email"))
		return nil
	}
	fmt.Fprintln(a.out, firstNonEmpty(result.Error, result.Message, "Failed to send OTP. Please try again."))
	return nil
}

func (a *app) otpStep(ctx context.Context, flow *wizard.Flow) error {
	otp, err := a.prompt("OTP (or \"back\")")
	if err != nil {
		return err
	}
	if strings.EqualFold(otp, "back") {
		return flow.Back()
	}

	result, err := flow.VerifyOTP(ctx, otp)
	if err != nil {
		return err
	}
	if !result.Authenticated {
		fmt.Fprintln(a.out, firstNonEmpty(result.Error, result.Message, "Invalid OTP. Please try again."))
	}
	return nil
}

func (a *app) registrationStep(ctx context.Context, flow *wizard.Flow) error {
	var answers [5]string
	for i, label := range []string{"Name", "Age", "Gender (Male/Female/Other)", "Phone", "Address"} {
		v, err := a.prompt(label)
		if err != nil {
			return err
		}
		answers[i] = v
	}

	age, err := strconv.Atoi(answers[1])
	if err != nil {
		return errors.NewValidation("Age must be a number", err)
	}
	result, err := flow.Register(ctx, wizard.Profile{
		Name:    answers[0],
		Age:     age,
		Gender:  client.Gender(answers[2]),
		Phone:   answers[3],
		Address: answers[4],
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, firstNonEmpty(result.Message, "Registration successful"))
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	if err := a.client.Logout(ctx, a.sess); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out successfully")
	return nil
}

func (a *app) status(ctx context.Context, _ []string) error {
	if id, ok := a.sess.Read(ctx); ok {
		fmt.Fprintf(a.out, "Signed in as patient %s\n", id)
		return nil
	}
	fmt.Fprintln(a.out, "Not signed in")
	return nil
}

func (a *app) predict(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewValidation("Please upload a retinal scan to proceed", nil)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return errors.NewValidation("Unable to read the image", err)
	}
	defer f.Close()

	prediction, err := a.client.PredictDisease(ctx, a.sess, client.Image{
		Filename: filepath.Base(args[0]),
		Body:     f,
	})
	if err != nil {
		return err
	}
	return a.print(prediction)
}

func (a *app) history(ctx context.Context, _ []string) error {
	items, err := a.client.GetPatientHistory(ctx, a.sess)
	if err != nil {
		return err
	}
	if items == nil {
		items = []client.HistoryItem{}
	}
	return a.print(items)
}

func (a *app) doctors(ctx context.Context, args []string) error {
	fs := flags("doctors")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var loc *client.Coordinates
	switch {
	case fs.Changed("lat") && fs.Changed("lng"):
		loc = &client.Coordinates{Latitude: *lat, Longitude: *lng}
	case fs.Changed("lat") || fs.Changed("lng"):
		return errors.NewValidation("Both --lat and --lng are required", nil)
	}

	doctors, err := a.client.GetDoctorsNearMe(ctx, loc)
	if err != nil {
		return err
	}
	if doctors == nil {
		doctors = []client.Doctor{}
	}
	return a.print(doctors)
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flags("report")
	disease := fs.String("disease", "", "condition to report on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := a.client.GenerateReport(ctx, a.sess, *disease)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrValidation {
			return err
		}
		a.logger.Debug().Err(err).Msg("report generation failed")
		return errors.NewValidation(client.ClassifyReportError(err).Message(), err)
	}
	fmt.Fprintln(a.out, report.URL)
	return nil
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
