package seed

import (
	"bytes"
	"fmt"
)

// demoPDF builds a small but structurally valid PDF with the given
// number of pages, each carrying a title line. Good enough for the
// page counter and for a viewer to open.
func demoPDF(title string, pages int) []byte {
	if pages < 1 {
		pages = 1
	}

	// Object layout: 1 catalog, 2 pages tree, 3 font, then for each
	// page one page object and one content stream.
	type object struct {
		body string
	}
	objects := []object{
		{body: "<< /Type /Catalog /Pages 2 0 R >>"},
		{}, // pages tree, filled below
		{body: "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"},
	}

	kids := ""
	for i := 0; i < pages; i++ {
		pageNum := 4 + i*2
		contentNum := pageNum + 1
		kids += fmt.Sprintf("%d 0 R ", pageNum)

		objects = append(objects, object{body: fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentNum)})

		stream := fmt.Sprintf("BT /F1 16 Tf 72 770 Td (%s - Page %d) Tj ET", escapePDFText(title), i+1)
		objects = append(objects, object{body: fmt.Sprintf(
			"<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)})
	}
	objects[1].body = fmt.Sprintf("<< /Type /Pages /Count %d /Kids [%s] >>", pages, kids)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj.body)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefStart)

	return buf.Bytes()
}

// escapePDFText escapes the characters PDF string literals reserve.
func escapePDFText(s string) string {
	var b bytes.Buffer
	for _, c := range []byte(s) {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
