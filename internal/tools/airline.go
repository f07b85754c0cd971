package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

const (
	GetFlightInfo  = "get_flight_info"
	GetBookingInfo = "get_booking_info"
)

type FlightInfoRequest struct {
	FlightNumber string `json:"flight_number"`
}

type FlightInfo struct {
	FlightNumber string `json:"flight_number"`
	Departure    string `json:"departure"`
	Arrival      string `json:"arrival"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Status       string `json:"status"`
}

type BookingInfoRequest struct {
	BookingNumber string `json:"booking_number"`
}

type BookingInfo struct {
	BookingNumber    string `json:"booking_number"`
	FlightNumber     string `json:"flight_number"`
	PassengerName    string `json:"passenger_name"`
	PassengerEmail   string `json:"passenger_email"`
	PassengerPhone   string `json:"passenger_phone"`
	PassengerAddress string `json:"passenger_address"`
	PassengerDOB     string `json:"passenger_dob"`
	PassengerGender  string `json:"passenger_gender"`
}

// LookupFlight 航班查询（模拟数据），不校验航班号
func LookupFlight(_ context.Context, req FlightInfoRequest) (*FlightInfo, error) {
	return &FlightInfo{
		FlightNumber: req.FlightNumber,
		Departure:    "LAX",
		Arrival:      "JFK",
		Date:         "2024-01-01",
		Time:         "10:00 AM",
		Status:       "On time",
	}, nil
}

// LookupBooking 订单查询（模拟数据），航班号固定为 "AE" + 订单号
func LookupBooking(_ context.Context, req BookingInfoRequest) (*BookingInfo, error) {
	return &BookingInfo{
		BookingNumber:    req.BookingNumber,
		FlightNumber:     "AE" + req.BookingNumber,
		PassengerName:    "John Doe",
		PassengerEmail:   "john.doe@example.com",
		PassengerPhone:   "1234567890",
		PassengerAddress: "123 Main St, Anytown, USA",
		PassengerDOB:     "1990-01-01",
		PassengerGender:  "Male",
	}, nil
}

func flightInfoTool() Variant {
	info := &schema.ToolInfo{
		Name: GetFlightInfo,
		Desc: "Get flight information for a given flight number",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"flight_number": {
				Type:     schema.String,
				Desc:     "Airline flight number",
				Required: true,
			},
		}),
	}
	return Variant{Name: info.Name, Info: info, Handler: utils.NewTool(info, LookupFlight)}
}

func bookingInfoTool() Variant {
	info := &schema.ToolInfo{
		Name: GetBookingInfo,
		Desc: "Get booking information for a given booking number",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"booking_number": {
				Type:     schema.String,
				Desc:     "Airline booking number",
				Required: true,
			},
		}),
	}
	return Variant{Name: info.Name, Info: info, Handler: utils.NewTool(info, LookupBooking)}
}

// NewAirlineRegistry 航空客服的两个查询工具
func NewAirlineRegistry() *Registry {
	r, err := NewRegistry(flightInfoTool(), bookingInfoTool())
	if err != nil {
		// 名称是常量，不会重复
		panic(err)
	}
	return r
}
