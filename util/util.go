package util

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"runtime"

	"github.com/tendermint/tendermint/libs/log"
)

var txIDRegex = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

// LogError : Log error if it exists
func LogError(err error) error {
	if err != nil {
		fmt.Println(err)
	}
	return err
}

// LoggerError : Log error if it exists using a logger
func LoggerError(logger log.Logger, err error) error {
	if err != nil {
		logger.Error(fmt.Sprintf("Error in %s: %s", GetCurrentFuncName(2), err.Error()))
	}
	return err
}

// GetCurrentFuncName : get name of function (nested n levels up) for error reporting
func GetCurrentFuncName(n int) string {
	pc, _, _, _ := runtime.Caller(n)
	return fmt.Sprintf("%s", runtime.FuncForPC(pc).Name())
}

// GetEnv : Get an env var but with a default. Untyped, defaults to string.
func GetEnv(key string, def string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return def
	}
	return value
}

// GetClientIP : obtain the client IP behind a proxy if necessary
func GetClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-FORWARDED-FOR")
	if forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}

// IsValidTxID : a transaction id is 32 bytes of hex
func IsValidTxID(txid string) bool {
	return txIDRegex.MatchString(txid)
}
