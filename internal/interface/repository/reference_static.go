package repository

import (
	"context"
	"strings"

	"flightsched-service/internal/domain/entity"
	"flightsched-service/internal/domain/repository"
)

// Built-in reference data used when no PostgreSQL reference database is configured.
var staticAirports = map[string]entity.Timezone{
	"ICN": {AirportCode: "ICN", AirportName: "Incheon International Airport", CityCode: "SEL", CityName: "Seoul", GmtTz: "+09:00", TzName: "Asia/Seoul"},
	"GMP": {AirportCode: "GMP", AirportName: "Gimpo International Airport", CityCode: "SEL", CityName: "Seoul", GmtTz: "+09:00", TzName: "Asia/Seoul"},
	"PUS": {AirportCode: "PUS", AirportName: "Gimhae International Airport", CityCode: "PUS", CityName: "Busan", GmtTz: "+09:00", TzName: "Asia/Seoul"},
	"CJU": {AirportCode: "CJU", AirportName: "Jeju International Airport", CityCode: "CJU", CityName: "Jeju", GmtTz: "+09:00", TzName: "Asia/Seoul"},
	"TAE": {AirportCode: "TAE", AirportName: "Daegu International Airport", CityCode: "TAE", CityName: "Daegu", GmtTz: "+09:00", TzName: "Asia/Seoul"},
	"MNL": {AirportCode: "MNL", AirportName: "Ninoy Aquino International Airport", CityCode: "MNL", CityName: "Manila", GmtTz: "+08:00", TzName: "Asia/Manila"},
	"CEB": {AirportCode: "CEB", AirportName: "Mactan-Cebu International Airport", CityCode: "CEB", CityName: "Cebu", GmtTz: "+08:00", TzName: "Asia/Manila"},
	"CRK": {AirportCode: "CRK", AirportName: "Clark International Airport", CityCode: "CRK", CityName: "Angeles", GmtTz: "+08:00", TzName: "Asia/Manila"},
	"KLO": {AirportCode: "KLO", AirportName: "Kalibo International Airport", CityCode: "KLO", CityName: "Kalibo", GmtTz: "+08:00", TzName: "Asia/Manila"},
	"TAG": {AirportCode: "TAG", AirportName: "Bohol-Panglao International Airport", CityCode: "TAG", CityName: "Tagbilaran", GmtTz: "+08:00", TzName: "Asia/Manila"},
	"PPS": {AirportCode: "PPS", AirportName: "Puerto Princesa International Airport", CityCode: "PPS", CityName: "Puerto Princesa", GmtTz: "+08:00", TzName: "Asia/Manila"},
	"DVO": {AirportCode: "DVO", AirportName: "Francisco Bangoy International Airport", CityCode: "DVO", CityName: "Davao", GmtTz: "+08:00", TzName: "Asia/Manila"},
	"ILO": {AirportCode: "ILO", AirportName: "Iloilo International Airport", CityCode: "ILO", CityName: "Iloilo", GmtTz: "+08:00", TzName: "Asia/Manila"},
	"BCD": {AirportCode: "BCD", AirportName: "Bacolod-Silay Airport", CityCode: "BCD", CityName: "Bacolod", GmtTz: "+08:00", TzName: "Asia/Manila"},
}

var staticAirlines = map[string]string{
	"KE": "Korean Air",
	"OZ": "Asiana Airlines",
	"7C": "Jeju Air",
	"LJ": "Jin Air",
	"TW": "T'way Air",
	"BX": "Air Busan",
	"ZE": "Eastar Jet",
	"RS": "Air Seoul",
	"PR": "Philippine Airlines",
	"5J": "Cebu Pacific",
	"Z2": "Philippines AirAsia",
	"DG": "Cebgo",
}

// StaticTimezoneRepository serves the built-in airport table
type StaticTimezoneRepository struct{}

// NewStaticTimezoneRepository creates a repository over the built-in airport table
func NewStaticTimezoneRepository() repository.TimezoneRepository {
	return StaticTimezoneRepository{}
}

func (StaticTimezoneRepository) GetByAirportCode(_ context.Context, code string) (*entity.Timezone, error) {
	tz, ok := staticAirports[strings.ToUpper(code)]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &tz, nil
}

// StaticAirlineRepository serves the built-in airline table
type StaticAirlineRepository struct{}

func NewStaticAirlineRepository() repository.AirlineRepository {
	return StaticAirlineRepository{}
}

func (StaticAirlineRepository) GetByCode(_ context.Context, code string) (*entity.Airline, error) {
	code = strings.ToUpper(code)
	name, ok := staticAirlines[code]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &entity.Airline{Code: code, Name: name}, nil
}
