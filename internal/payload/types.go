// Package payload builds the synthetic OpenRTB 2.5 bid request that rtbload
// replays against the target.
package payload

// BidRequest is the subset of an OpenRTB 2.5 bid request sent on every call.
type BidRequest struct {
	ID     string  `json:"id"`
	Imp    []Imp   `json:"imp"`
	Device *Device `json:"device"`
	User   *User   `json:"user"`
	TMax   int64   `json:"tmax"`
}

// Imp is a single impression on offer.
type Imp struct {
	ID                string  `json:"id"`
	Banner            *Banner `json:"banner"`
	DisplayManager    string  `json:"displaymanager"`
	DisplayManagerVer string  `json:"displaymanagerver"`
	TagID             string  `json:"tagid"`
	BidFloor          float64 `json:"bidfloor"`
	BidFloorCur       string  `json:"bidfloorcur"`
}

type Banner struct {
	W int64 `json:"w"`
	H int64 `json:"h"`
}

// Device describes the simulated user agent's device.
type Device struct {
	UA             string `json:"ua"`
	IP             string `json:"ip"`
	OS             string `json:"os"`
	Model          string `json:"model"`
	ConnectionType int    `json:"connectiontype"`
}

type User struct {
	ID string `json:"id"`
}

// BidResponse is the bidder's reply. rtbload never inspects it; the dummy
// bidder produces it.
type BidResponse struct {
	ID      string    `json:"id"`
	SeatBid []SeatBid `json:"seatbid"`
	Version string    `json:"version"`
}

type SeatBid struct {
	Bid  []Bid  `json:"bid"`
	Seat string `json:"seat"`
}

type Bid struct {
	ID    string  `json:"id"`
	ImpID string  `json:"impid"`
	Price float64 `json:"price"`
	AdM   string  `json:"adm"`
	CrID  string  `json:"crid"`
	W     int64   `json:"w"`
	H     int64   `json:"h"`
}
