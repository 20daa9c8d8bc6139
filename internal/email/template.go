package email

import (
	"fmt"
	"time"
)

const (
	ResetSubject  = "Réinitialisation de votre mot de passe - Doc'Trot Admin"
	ResetFromName = "Doc'Trot Admin"
	ResetToName   = "Admin"
)

// TemplateParams are the variables exposed to the provider template. The
// recipient is repeated under the names common templates expect.
type TemplateParams struct {
	ToEmail   string `json:"to_email"`
	UserEmail string `json:"user_email"`
	Email     string `json:"email"`
	ToName    string `json:"to_name"`
	ResetURL  string `json:"reset_url"`
	ExpiresIn string `json:"expires_in"`
	FromName  string `json:"from_name"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// NewResetParams fills the password-reset template for recipient.
func NewResetParams(recipient, resetURL string, ttl time.Duration) TemplateParams {
	expiresIn := FormatTTL(ttl)
	return TemplateParams{
		ToEmail:   recipient,
		UserEmail: recipient,
		Email:     recipient,
		ToName:    ResetToName,
		ResetURL:  resetURL,
		ExpiresIn: expiresIn,
		FromName:  ResetFromName,
		Subject:   ResetSubject,
		Message:   resetMessage(resetURL, expiresIn),
	}
}

func resetMessage(resetURL, expiresIn string) string {
	return fmt.Sprintf(`Vous avez demandé une réinitialisation de mot de passe pour votre compte administrateur Doc'Trot.

Cliquez sur le lien ci-dessous pour réinitialiser votre mot de passe :
%s

Important :
- Ce lien expire dans %s
- Ce lien ne peut être utilisé qu'une seule fois
- Si vous n'avez pas demandé cette réinitialisation, ignorez cet email

Pour votre sécurité, ne partagez jamais ce lien avec personne.`, resetURL, expiresIn)
}

// FormatTTL renders a duration the way the template shows it, e.g. "10 minutes".
func FormatTTL(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	switch {
	case minutes <= 1:
		return "1 minute"
	case minutes%60 == 0 && minutes >= 120:
		return fmt.Sprintf("%d heures", minutes/60)
	case minutes == 60:
		return "1 heure"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
