package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/app/repository"
	"github.com/rsinghal/paperroute/internal/pkg/cache"
	"github.com/rsinghal/paperroute/internal/pkg/database"
	"github.com/rsinghal/paperroute/internal/pkg/env"
	"github.com/rsinghal/paperroute/internal/pkg/otp"
	"github.com/rsinghal/paperroute/internal/pkg/session"
	"github.com/rsinghal/paperroute/internal/pkg/sms"
	"github.com/rsinghal/paperroute/internal/pkg/usercontext"
)

// smsSender is swappable so tests and dev run without an SMS gateway.
var smsSender otp.Sender = sms.LogSender{}

func otpService() *otp.Service {
	return otp.NewService(cache.GetClient(), smsSender)
}

func countryCode() string {
	return env.GetEnv("PHONE_COUNTRY_CODE", "+91")
}

type requestCodeInput struct {
	Phone string `json:"phone"`
}

type verifyCodeInput struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

// HandleAuthRequestCode starts a phone login: validates the number and sends a
// one-time code, returning the challenge handle for the verify step.
func HandleAuthRequestCode(c *fiber.Ctx) error {
	var in requestCodeInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	challengeID, err := otpService().RequestCode(ctx, in.Phone)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidPhone) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_phone",
				"message": "please enter a valid 10-digit phone number",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "challenge_delivery_failed",
			"message": "could not send the verification code, please try again",
		})
	}

	return c.JSON(fiber.Map{"challenge_id": challengeID})
}

// HandleAuthVerify completes a phone login. On the first successful login for
// a number the subscriber record is created with the default role. The admin
// flag is computed here once and cached in the session: role changes take
// effect only after the next login.
func HandleAuthVerify(c *fiber.Ctx) error {
	var in verifyCodeInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	phone, err := otpService().VerifyCode(ctx, in.ChallengeID, in.Code)
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrChallengeExpired):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{
				"error":   "challenge_expired",
				"message": "the verification code expired, request a new one",
			})
		case errors.Is(err, otp.ErrInvalidCode):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_code",
				"message": "the verification code is not correct",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "verification_failed"})
		}
	}

	subscribers := repository.NewSubscriberRepository(database.GetDB())
	fullPhone := countryCode() + phone

	subscriber, err := subscribers.GetByPhone(fullPhone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		subscriber, err = models.CreateSubscriber(fullPhone)
		if err == nil {
			err = subscribers.Create(subscriber)
		}
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscriber_lookup_failed"})
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session_failed"})
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeySubscriberID, subscriber.ID)
	sess.Set(usercontext.KeyPhone, subscriber.PhoneNumber)
	sess.Set(usercontext.KeyIsAdmin, subscriber.IsAdmin())
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session_failed"})
	}

	return c.JSON(fiber.Map{
		"subscriber": subscriber,
		"is_admin":   subscriber.IsAdmin(),
	})
}

// HandleAuthLogout destroys the session.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session_failed"})
	}
	if err := sess.Destroy(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session_failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}
