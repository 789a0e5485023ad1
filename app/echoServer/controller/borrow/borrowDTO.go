package borrow

type RequestBorrowReq struct {
	BookID string `json:"book_id" validate:"required,uuid4"`
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required,oneof=PENDING BORROWED RETURNED LATE_RETURN"`
}
