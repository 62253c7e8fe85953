package handlers

import (
	"log"
	"net/http"
	"os"
)

// DocsHandler serves the static marketing/legal pages.
type DocsHandler struct{}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

const privacyHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Privacy Policy - HomePulse</title>
	<style>
		body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
		.container { background-color: #fff; padding: 40px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
		h1 { color: #2c3e50; border-bottom: 2px solid #eee; padding-bottom: 10px; }
		h2 { color: #34495e; margin-top: 30px; }
		.date { color: #7f8c8d; font-style: italic; margin-bottom: 20px; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Privacy Policy</h1>
		<div class="date">Last updated: July 14, 2026</div>
		<h2>What we collect</h2>
		<p>Your account details (managed by our authentication provider), the listings you save, and the pricing analyses you run.</p>
		<h2>What we do with it</h2>
		<p>We use this data to show your saved homes, meter your analysis credits, and send you price alerts you opted into. We never sell it.</p>
		<h2>Deleting your data</h2>
		<p>Deleting your account from the profile page removes your data from our systems.</p>
		<h2>Contact</h2>
		<p>privacy@homepulse.app</p>
	</div>
</body>
</html>`

const termsHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Terms of Service - HomePulse</title>
	<style>
		body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
		.container { background-color: #fff; padding: 40px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
		h1 { color: #2c3e50; border-bottom: 2px solid #eee; padding-bottom: 10px; }
		h2 { color: #34495e; margin-top: 30px; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Terms of Service</h1>
		<h2>Estimates are estimates</h2>
		<p>HomePulse price estimates are informational and not an appraisal, a valuation, or financial advice.</p>
		<h2>Credits</h2>
		<p>Analysis credits replenish on daily and monthly cycles according to your plan. Bonus credits do not expire. Credits have no cash value.</p>
		<h2>Fair use</h2>
		<p>Automated scraping of listings or estimates is not permitted.</p>
	</div>
</body>
</html>`

func (h *DocsHandler) ServePrivacyPolicy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(privacyHTML))
}

func (h *DocsHandler) ServeTermsOfServices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(termsHTML))
}

func (h *DocsHandler) GetAppMinVersion(w http.ResponseWriter, r *http.Request) {
	appAndroidMinVersion := os.Getenv("ANDROID_MIN_VERSION")
	appIOSMinVersion := os.Getenv("IOS_MIN_VERSION")
	if appAndroidMinVersion == "" || appIOSMinVersion == "" {
		log.Println("ANDROID_MIN_VERSION/IOS_MIN_VERSION not set")
		respondWithError(w, http.StatusInternalServerError, "Version configuration missing")
		return
	}

	type MinVersion struct {
		MinAndroidVersion string `json:"min_android_version_code"`
		MinIOSVersion     string `json:"min_ios_version_code"`
		UpdateMessage     string `json:"update_message"`
	}

	respondWithJSON(w, http.StatusOK, &MinVersion{
		MinAndroidVersion: appAndroidMinVersion,
		MinIOSVersion:     appIOSMinVersion,
		UpdateMessage:     "An important update is available! Please update to continue using the app.",
	})
}
