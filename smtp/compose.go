package smtp

import (
	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"
)

// ComposeHTML renders the HTML version of the newsletter for one recipient,
// with that recipient's unsubscribe link attached as the email action.
func ComposeHTML(productName, productLink, text, unsubscribeURL string) (string, error) {
	h := hermes.Hermes{
		Product: hermes.Product{
			Name: productName,
			Link: productLink,
		},
	}

	email := hermes.Email{
		Body: hermes.Body{
			Intros: []string{text},
			Actions: []hermes.Action{
				{
					Instructions: "No longer interested in this newsletter?",
					Button: hermes.Button{
						Color: "#DC4D2F",
						Text:  "Unsubscribe",
						Link:  unsubscribeURL,
					},
				},
			},
		},
	}

	body, err := h.GenerateHTML(email)
	if err != nil {
		return "", errors.Errorf("failed to generate HTML email: %v", err)
	}

	return body, nil
}
