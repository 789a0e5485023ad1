package mailerrepo

// SendReq carries the template parameters for one outbound email.
type SendReq struct {
	TemplateID string
	ToName     string
	ToEmail    string
	Subject    string
	Message    string
}

type Repo interface {
	Send(req SendReq) error
}
