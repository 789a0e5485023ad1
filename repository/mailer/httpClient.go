package mailerrepo

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"bookwise/util/httpx"
)

const sendURL = "https://api.emailjs.com/api/v1.0/email/send"

type Config struct {
	ServiceID  string
	PublicKey  string
	PrivateKey string
}

type httpRepo struct {
	cfg    Config
	client *http.Client
}

func NewHTTP(cfg Config) Repo { return &httpRepo{cfg: cfg, client: httpx.Client()} }

func (r *httpRepo) Send(req SendReq) error {
	body := map[string]any{
		"service_id":  r.cfg.ServiceID,
		"template_id": req.TemplateID,
		"user_id":     r.cfg.PublicKey,
		"accessToken": r.cfg.PrivateKey,
		"template_params": map[string]string{
			"to_name":  req.ToName,
			"to_email": req.ToEmail,
			"subject":  req.Subject,
			"message":  req.Message,
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal email payload")
	}

	httpReq, err := http.NewRequest(http.MethodPost, sendURL, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, "build email request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "send email")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("emailjs send failed: %s", resp.Status)
	}
	return nil
}
