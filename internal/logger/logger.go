package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// L is the shared application logger. Configure once from main via Init;
// packages log through it directly.
var L = logrus.New()

func Init(level string) {
	L.SetOutput(os.Stdout)
	L.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	L.SetLevel(lvl)
}
