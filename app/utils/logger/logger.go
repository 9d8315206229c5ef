package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a JSON logger at the given level. The hook usually prefixes
// the message with the component name.
func NewLogger(level string, hook logrus.Hook) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if hook != nil {
		log.AddHook(hook)
	}

	return logrus.NewEntry(log)
}

type prefixHook struct {
	prefix string
}

func (h *prefixHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.prefix + entry.Message
	return nil
}

func (h *prefixHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

type MainLogHook struct{ prefixHook }

func NewMainLogHook() *MainLogHook { return &MainLogHook{prefixHook{"Main: "}} }

type HTTPLogHook struct{ prefixHook }

func NewHTTPLogHook() *HTTPLogHook { return &HTTPLogHook{prefixHook{"HTTP: "}} }

type CheckoutLogHook struct{ prefixHook }

func NewCheckoutLogHook() *CheckoutLogHook { return &CheckoutLogHook{prefixHook{"Checkout: "}} }

type GatewayLogHook struct{ prefixHook }

func NewGatewayLogHook() *GatewayLogHook { return &GatewayLogHook{prefixHook{"Gateway: "}} }

type AdminLogHook struct{ prefixHook }

func NewAdminLogHook() *AdminLogHook { return &AdminLogHook{prefixHook{"Admin: "}} }

// Discard returns an entry that writes nowhere; used by tests.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}
