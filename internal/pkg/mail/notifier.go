package mail

import (
	"fmt"
	"time"

	"github.com/memberhive/memberhive/app/repository"
)

// Notifier delivers subscription lifecycle emails. It satisfies the
// membership package's Notifier interface.
type Notifier struct {
	users repository.UserRepository
}

// NewNotifier creates an SMTP-backed notifier.
func NewNotifier(users repository.UserRepository) *Notifier {
	return &Notifier{users: users}
}

// SendExpirationWarning tells a subscriber their plan is about to lapse.
func (n *Notifier) SendExpirationWarning(userID uint, planName string, expiration time.Time) error {
	user, err := n.users.GetByID(userID)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your %s subscription expires on %s", planName, expiration.Format("2006-01-02"))
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your <strong>%s</strong> subscription expires on %s. Renew now to keep your access.</p>",
		user.Name, planName, expiration.Format("January 2, 2006"),
	)
	return SendMail(user.Email, subject, body)
}

// SendBonusNotice tells a referrer their subscription was extended.
func (n *Notifier) SendBonusNotice(referrerID uint, planName string, newExpiration time.Time) error {
	user, err := n.users.GetByID(referrerID)
	if err != nil {
		return err
	}
	subject := "Your referral earned you a subscription bonus"
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Someone you referred just subscribed to <strong>%s</strong>. Your own subscription now runs until %s.</p>",
		user.Name, planName, newExpiration.Format("January 2, 2006"),
	)
	return SendMail(user.Email, subject, body)
}
