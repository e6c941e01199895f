package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"

	"booking-sync-service/internal/infrastructure/config"
	"booking-sync-service/internal/infrastructure/oauth"
	"booking-sync-service/pkg/logger"
)

const callbackAddr = "localhost:8090"

// Prints a refresh token for GOOGLE_REFRESH_TOKEN after an interactive consent
func main() {
	log := logger.NewLogger("info")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Fatal("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	googleOAuth := oauth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, "", log)
	googleOAuth.SetRedirectURL("http://" + callbackAddr + "/oauth2callback")

	state := randomState()

	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := googleOAuth.ExchangeCode(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to exchange code: %v", err), http.StatusInternalServerError)
			return
		}

		tokenJSON, err := googleOAuth.TokenToJSON(token)
		if err != nil {
			log.Error("Failed to encode token", "error", err)
		} else {
			fmt.Printf("\nToken:\n%s\n", tokenJSON)
		}
		fmt.Printf("\nGOOGLE_REFRESH_TOKEN=%s\n\n", token.RefreshToken)

		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", googleOAuth.GenerateAuthURL(state))

	if err := http.ListenAndServe(callbackAddr, nil); err != nil {
		log.Fatal("Callback server error", "error", err)
	}
}

func randomState() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "booking-sync-state"
	}
	return hex.EncodeToString(buf)
}
