package export

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
)

const (
	docxIndentStep = 360 // twips

	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	XmlnsW  string   `xml:"xmlns:w,attr"`
	Body    wBody    `xml:"w:body"`
}

type wBody struct {
	Paragraphs []wParagraph `xml:"w:p"`
}

type wParagraph struct {
	Props *wParaProps `xml:"w:pPr,omitempty"`
	Run   wRun        `xml:"w:r"`
}

type wParaProps struct {
	Indent wIndent `xml:"w:ind"`
}

type wIndent struct {
	Left int `xml:"w:left,attr"`
}

type wRun struct {
	Props wRunProps `xml:"w:rPr"`
	Text  wText     `xml:"w:t"`
}

type wRunProps struct {
	Fonts  wFonts    `xml:"w:rFonts"`
	Bold   *struct{} `xml:"w:b,omitempty"`
	Size   wVal      `xml:"w:sz"`
	SizeCS wVal      `xml:"w:szCs"`
}

type wFonts struct {
	ASCII string `xml:"w:ascii,attr"`
	HAnsi string `xml:"w:hAnsi,attr"`
	CS    string `xml:"w:cs,attr"`
}

type wVal struct {
	Val int `xml:"w:val,attr"`
}

type wText struct {
	Space string `xml:"xml:space,attr"`
	Value string `xml:",chardata"`
}

// WriteDOCX writes blocks as a WordprocessingML package, one paragraph per block.
func WriteDOCX(w io.Writer, blocks []Block) error {
	doc, err := documentXML(blocks)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"word/document.xml", doc},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := f.Write(p.body); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

func documentXML(blocks []Block) ([]byte, error) {
	doc := wDocument{XmlnsW: wordNamespace}
	for _, b := range blocks {
		st := StyleFor(b.Kind)
		p := wParagraph{
			Run: wRun{
				Props: wRunProps{
					Fonts:  wFonts{ASCII: st.FontFamily, HAnsi: st.FontFamily, CS: st.FontFamily},
					Size:   wVal{st.DOCXSize},
					SizeCS: wVal{st.DOCXSize},
				},
				Text: wText{Space: "preserve", Value: b.Text},
			},
		}
		if st.Bold {
			p.Run.Props.Bold = &struct{}{}
		}
		if b.Indent > 0 {
			p.Props = &wParaProps{Indent: wIndent{Left: b.Indent * docxIndentStep}}
		}
		doc.Body.Paragraphs = append(doc.Body.Paragraphs, p)
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document.xml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
