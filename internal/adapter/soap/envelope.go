// Package soap serves the book catalogue as a SOAP 1.1 document/literal
// service on POST /soap.
package soap

import "encoding/xml"

const (
	envelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	targetNamespace   = "book_service"
)

// Inbound elements match on local name only, so clients may use any prefix
// or namespace for the operation and its parameters.

type requestEnvelope struct {
	XMLName xml.Name    `xml:"Envelope"`
	Body    requestBody `xml:"Body"`
}

type requestBody struct {
	AddBook    *titleRequest  `xml:"AddBook"`
	GetBooks   *struct{}      `xml:"GetBooks"`
	GetBook    *idRequest     `xml:"GetBook"`
	UpdateBook *updateRequest `xml:"UpdateBook"`
	DeleteBook *idRequest     `xml:"DeleteBook"`
}

type titleRequest struct {
	Title *string `xml:"title"`
}

type idRequest struct {
	ID *int `xml:"id"`
}

type updateRequest struct {
	ID    *int    `xml:"id"`
	Title *string `xml:"title"`
}

type responseEnvelope struct {
	XMLName xml.Name     `xml:"soap:Envelope"`
	SoapNS  string       `xml:"xmlns:soap,attr"`
	TNS     string       `xml:"xmlns:tns,attr"`
	Body    responseBody `xml:"soap:Body"`
}

type responseBody struct {
	Content any
}

func newResponse(content any) responseEnvelope {
	return responseEnvelope{
		SoapNS: envelopeNamespace,
		TNS:    targetNamespace,
		Body:   responseBody{Content: content},
	}
}

type book struct {
	ID    int    `xml:"tns:id"`
	Title string `xml:"tns:title"`
}

type addBookResponse struct {
	XMLName xml.Name `xml:"tns:AddBookResponse"`
	Result  book     `xml:"tns:AddBookResult"`
}

type getBooksResponse struct {
	XMLName xml.Name  `xml:"tns:GetBooksResponse"`
	Result  bookArray `xml:"tns:GetBooksResult"`
}

type bookArray struct {
	Books []book `xml:"tns:BookSOAP"`
}

// Result is nil when no book matched; the response element is then empty.
type getBookResponse struct {
	XMLName xml.Name `xml:"tns:GetBookResponse"`
	Result  *book    `xml:"tns:GetBookResult,omitempty"`
}

type updateBookResponse struct {
	XMLName xml.Name `xml:"tns:UpdateBookResponse"`
	Result  *book    `xml:"tns:UpdateBookResult,omitempty"`
}

type deleteBookResponse struct {
	XMLName xml.Name `xml:"tns:DeleteBookResponse"`
	Result  bool     `xml:"tns:DeleteBookResult"`
}

type fault struct {
	XMLName xml.Name `xml:"soap:Fault"`
	Code    string   `xml:"faultcode"`
	String  string   `xml:"faultstring"`
}
