package spreadsheetxml

import "encoding/xml"

// Minimal schema for the SpreadsheetML 2003 documents the NIR-Online software
// exports. Only the element paths the extractor walks are declared; styles,
// named ranges and print settings are ignored by the decoder.

type xmlWorkbook struct {
	XMLName    xml.Name       `xml:"urn:schemas-microsoft-com:office:spreadsheet Workbook"`
	Worksheets []xmlWorksheet `xml:"Worksheet"`
}

type xmlWorksheet struct {
	Name   string     `xml:"urn:schemas-microsoft-com:office:spreadsheet Name,attr"`
	Tables []xmlTable `xml:"Table"`
}

type xmlTable struct {
	Rows []xmlRow `xml:"Row"`
}

type xmlRow struct {
	Cells []xmlCell `xml:"Cell"`
}

type xmlCell struct {
	Data *xmlData `xml:"Data"`
}

type xmlData struct {
	Value string `xml:",chardata"`
}
