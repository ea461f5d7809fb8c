package email

import (
	"context"
	"fmt"

	"github.com/Julius14h/FlyNext/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("send email to %s about %s for booking %d\n", event.Email, event.Type, event.BookingID)
	return nil
}
