package leave

type Status string

const (
	Pending   Status = "pending"
	Approved  Status = "approved"
	Rejected  Status = "rejected"
	Cancelled Status = "cancelled"
)

type Type string

const (
	Annual    Type = "annual"
	Sick      Type = "sick"
	Personal  Type = "personal"
	Maternity Type = "maternity"
	Unpaid    Type = "unpaid"
)

var Types = []Type{Annual, Sick, Personal, Maternity, Unpaid}

func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case Pending, Approved, Rejected, Cancelled:
		return true
	}
	return false
}
